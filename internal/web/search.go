package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/stormlightlabs/linedex/internal/search"
)

// SearchResponse represents the API search response.
type SearchResponse struct {
	Query   string         `json:"query"`
	Mode    string         `json:"mode"`
	Total   int            `json:"total"`
	Results []search.Match `json:"results"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleSearch answers GET /api/search?q=&regex=&case=&mask=&from=&to=&limit=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	text := params.Get("q")
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "query parameter required", "missing_param")
		return
	}

	q := search.Query{
		Mode:          search.ModeExact,
		Text:          text,
		CaseSensitive: parseBoolParam(r, "case", s.opts.CaseSensitive),
		Limit:         parseIntParam(r, "limit", s.opts.DefaultLimit),
	}
	if parseBoolParam(r, "regex", false) {
		q.Mode = search.ModePattern
	} else {
		q.Text = strings.TrimSpace(text)
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_date")
		return
	}
	q.Filter = filter

	matches, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		log.Error("search failed", "query", text, "mode", q.Mode, "err", err)
		writeError(w, http.StatusInternalServerError, "search failed", "search_error")
		return
	}
	if matches == nil {
		matches = []search.Match{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   text,
		Mode:    q.Mode.String(),
		Total:   len(matches),
		Results: matches,
	})
}

func parseFilter(r *http.Request) (search.Filter, error) {
	params := r.URL.Query()
	f := search.Filter{Mask: params.Get("mask")}

	from, err := search.ParseDate(params.Get("from"))
	if err != nil {
		return f, err
	}
	to, err := search.ParseDate(params.Get("to"))
	if err != nil {
		return f, err
	}
	f.From, f.To = from, to
	return f, nil
}

func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
