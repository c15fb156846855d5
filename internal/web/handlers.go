package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"diet-plan-assistant/internal/metrics"
	"diet-plan-assistant/internal/nutrition"
	"diet-plan-assistant/internal/planner"
	"diet-plan-assistant/internal/session"
	"diet-plan-assistant/internal/shared"
	"diet-plan-assistant/internal/usda"
)

const restartMessage = "Please submit your information first"

// submitInfoRequest is the raw submission payload; every field arrives as a
// string and is validated into a typed profile before any calculation runs.
type submitInfoRequest struct {
	nutrition.ProfileInput
	Cuisine string `json:"cuisine_preference"`
}

func (s *Server) handleSubmitInfo(w http.ResponseWriter, r *http.Request) {
	sid, err := s.cookies.ensureSession(w, r)
	if err != nil {
		log.Printf("session error: %v", err)
		fail(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	var req submitInfoRequest
	if err := decodeBody(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := nutrition.ParseProfile(req.ProfileInput)
	if err != nil {
		var verr *nutrition.ValidationError
		if errors.As(err, &verr) {
			fail(w, http.StatusBadRequest, verr.Error())
			return
		}
		fail(w, http.StatusBadRequest, "Invalid profile")
		return
	}

	if !planner.ValidCuisine(req.Cuisine) {
		fail(w, http.StatusBadRequest, "Invalid cuisine option")
		return
	}

	macros, err := nutrition.ComputeMacros(profile)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.sessions.SetProfile(sid, profile)
	if err := s.sessions.SetMacros(sid, macros); err != nil {
		log.Printf("failed to store macros: %v", err)
		fail(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	if err := s.sessions.SetCuisine(sid, req.Cuisine); err != nil {
		log.Printf("failed to store cuisine: %v", err)
		fail(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Macros:  macros,
		Message: "User information saved successfully",
	})
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if !ok {
		fail(w, http.StatusBadRequest, restartMessage)
		return
	}

	profile, err := s.sessions.Profile(sid)
	if err != nil {
		fail(w, http.StatusBadRequest, restartMessage)
		return
	}
	macros, err := s.sessions.Macros(sid)
	if err != nil {
		fail(w, http.StatusBadRequest, restartMessage)
		return
	}
	cuisine, err := s.sessions.Cuisine(sid)
	if err != nil {
		fail(w, http.StatusBadRequest, restartMessage)
		return
	}

	plan, err := s.planner.GeneratePlan(r.Context(), profile, macros, cuisine)
	if err != nil {
		log.Printf("plan generation failed: %v", err)
		fail(w, http.StatusBadGateway, "Could not generate a plan right now, please try again")
		return
	}

	s.recordMeta(plan.Meta)

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Plan:    plan.Text,
		Cuisine: cuisine,
	})
}

type searchFoodRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearchFood(w http.ResponseWriter, r *http.Request) {
	var req searchFoodRequest
	if err := decodeBody(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		fail(w, http.StatusBadRequest, "Query is required")
		return
	}

	foods, err := s.searcher.Search(r.Context(), req.Query, 10)
	if err != nil {
		var uerr *usda.UpstreamError
		if errors.As(err, &uerr) {
			log.Printf("food search failed: %v", uerr)
			fail(w, http.StatusBadGateway, "Food search is unavailable right now, please try again")
			return
		}
		log.Printf("food search failed: %v", err)
		fail(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	resp := envelope{Success: true, Foods: foods}
	if len(foods) == 0 {
		resp.Message = "No foods found"
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateCuisineRequest struct {
	Cuisine string `json:"cuisine"`
}

func (s *Server) handleUpdateCuisine(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if !ok {
		fail(w, http.StatusBadRequest, restartMessage)
		return
	}

	var req updateCuisineRequest
	if err := decodeBody(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !planner.ValidCuisine(req.Cuisine) {
		fail(w, http.StatusBadRequest, "Invalid cuisine option")
		return
	}

	if err := s.sessions.SetCuisine(sid, req.Cuisine); err != nil {
		fail(w, http.StatusBadRequest, restartMessage)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: fmt.Sprintf("Cuisine updated to %s", title(req.Cuisine)),
		Cuisine: req.Cuisine,
	})
}

func (s *Server) handleGetMacros(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if !ok {
		fail(w, http.StatusBadRequest, "No user data found")
		return
	}

	macros, err := s.sessions.Macros(sid)
	if err != nil {
		if errors.Is(err, session.ErrNoProfile) || errors.Is(err, session.ErrNoMacros) {
			fail(w, http.StatusBadRequest, "No user data found")
			return
		}
		fail(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Macros: macros})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if sid, ok := s.cookies.sessionID(r); ok {
		s.sessions.Clear(sid)
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Session cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Health: metrics.GetSysHealth()})
}

// recordMeta persists generation telemetry when a metrics store is wired.
func (s *Server) recordMeta(meta shared.AgentMeta) {
	if s.metricsStore == nil {
		return
	}
	if err := s.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("failed to record metrics: %v", err)
	}
}
