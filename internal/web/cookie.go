package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "diet_session"

// cookieManager issues and verifies the signed session cookie. The cookie
// value is a short-lived HS256 JWT whose subject is the opaque session ID,
// so clients cannot forge or swap session identifiers.
type cookieManager struct {
	secret []byte
	ttl    time.Duration
}

// newCookieManager builds a manager from the configured secret. With no
// secret configured a random one is generated, which invalidates all cookies
// on restart; that matches the session lifecycle, which is also per-process.
func newCookieManager(secret string, ttl time.Duration) (*cookieManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}
	return &cookieManager{secret: key, ttl: ttl}, nil
}

// newSessionID generates an opaque random session identifier.
func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// issue creates a fresh session ID and sets the signed cookie on the
// response.
func (cm *cookieManager) issue(w http.ResponseWriter) (string, error) {
	sid, err := newSessionID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cm.ttl)),
	})
	signed, err := token.SignedString(cm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cm.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}

// sessionID extracts and verifies the session ID from the request cookie.
func (cm *cookieManager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return cm.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// ensureSession returns the request's verified session ID, issuing a new
// session when the cookie is absent or invalid.
func (cm *cookieManager) ensureSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if sid, ok := cm.sessionID(r); ok {
		return sid, nil
	}
	return cm.issue(w)
}
