// Package usda queries the USDA FoodData Central search API and normalizes
// its records into a common nutrient shape.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.nal.usda.gov/fdc/v1/foods/search"

// Nutrients holds per-100g macro values. A nil field means the upstream
// record did not report that nutrient; this is distinct from an explicit zero.
type Nutrients struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

// Food is a single normalized search result.
type Food struct {
	Name      string    `json:"name"`
	FdcID     int64     `json:"fdcId"`
	DataType  string    `json:"dataType"`
	Nutrients Nutrients `json:"nutrients"`
}

// UpstreamError reports a transport or auth failure against the USDA API.
// Zero search results are not an error.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("usda api failure: %v", e.Err)
	}
	return fmt.Sprintf("usda api failure: status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client is a USDA FoodData Central search client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new USDA API client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client pointed at a non-default endpoint.
// Used by tests and by deployments behind an API gateway.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// searchParams are the knobs a single upstream query varies.
type searchParams struct {
	query           string
	dataTypes       []string
	requireAllWords bool
}

// strategy is one attempt in the ordered fallback chain. Each strategy issues
// exactly one upstream query; the chain stops at the first strategy returning
// at least one usable record.
type strategy struct {
	name   string
	params func(query string) searchParams
}

var strategies = []strategy{
	{
		name: "exact-sr-legacy",
		params: func(q string) searchParams {
			return searchParams{query: q, dataTypes: []string{"SR Legacy"}, requireAllWords: true}
		},
	},
	{
		name: "exact-secondary",
		params: func(q string) searchParams {
			return searchParams{query: q, dataTypes: []string{"Foundation", "Survey (FNDDS)"}, requireAllWords: true}
		},
	},
	{
		name: "tokenized-all-types",
		params: func(q string) searchParams {
			return searchParams{query: q, requireAllWords: true}
		},
	},
	{
		name: "singularized",
		params: func(q string) searchParams {
			return searchParams{query: singularize(q), requireAllWords: true}
		},
	},
	{
		name: "fuzzy",
		params: func(q string) searchParams {
			return searchParams{query: stripDescriptors(q), requireAllWords: false}
		},
	},
}

// Search runs the fallback chain for the given query. It returns an empty
// slice (and no error) when no strategy yields results; an UpstreamError is
// returned only on transport or auth failure.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Food, error) {
	cleaned := cleanQuery(query)
	if cleaned == "" {
		return []Food{}, nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	for _, s := range strategies {
		foods, err := c.searchOnce(ctx, s.params(cleaned), maxResults)
		if err != nil {
			return nil, err
		}
		if len(foods) > 0 {
			log.Printf("usda: strategy %q matched %d foods for %q", s.name, len(foods), query)
			return foods, nil
		}
	}

	log.Printf("usda: no results for %q after all strategies", query)
	return []Food{}, nil
}

// searchOnce executes a single upstream query and normalizes its records.
func (c *Client) searchOnce(ctx context.Context, p searchParams, maxResults int) ([]Food, error) {
	if p.query == "" {
		return nil, nil
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	// Fetch more than requested so nutrient-poor records can be filtered out.
	pageSize := maxResults * 2
	if pageSize > 50 {
		pageSize = 50
	}

	values := reqURL.Query()
	values.Set("api_key", c.apiKey)
	values.Set("query", p.query)
	values.Set("pageSize", strconv.Itoa(pageSize))
	values.Set("requireAllWords", strconv.FormatBool(p.requireAllWords))
	for _, dt := range p.dataTypes {
		values.Add("dataType", dt)
	}
	reqURL.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return normalizeFoods(payload.Foods, maxResults), nil
}

// cleanQuery collapses whitespace and rejects queries too short to search.
func cleanQuery(query string) string {
	cleaned := strings.Join(strings.Fields(query), " ")
	if len(cleaned) < 2 {
		return ""
	}
	return cleaned
}

// singularize strips a trailing "s" from each query word, the cheap
// plural-to-singular retry ("beans" -> "bean").
func singularize(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			words[i] = strings.TrimSuffix(w, "s")
		}
	}
	return strings.Join(words, " ")
}

// descriptors are cooking-method and freshness words that narrow searches
// without changing the food itself.
var descriptors = map[string]bool{
	"raw": true, "cooked": true, "boiled": true, "baked": true,
	"fried": true, "grilled": true, "roasted": true, "steamed": true,
	"fresh": true, "dried": true,
}

// stripDescriptors removes descriptor words for the last-resort fuzzy pass.
func stripDescriptors(query string) string {
	words := strings.Fields(strings.ToLower(query))
	kept := words[:0]
	for _, w := range words {
		if !descriptors[strings.Trim(w, ",")] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
