package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/query"
	"github.com/sells-group/leads-cli/internal/resolve"
)

type leadsResponse struct {
	RunID    string                 `json:"run_id"`
	Degraded bool                   `json:"degraded"`
	Sources  []resolve.SourceReport `json:"sources"`
	query.Page
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := s.current(w, r, r.URL.Query().Get("refresh") == "1")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, leadsResponse{
		RunID:    res.RunID,
		Degraded: res.Degraded(),
		Sources:  res.Sources,
		Page:     query.Apply(res.Leads, opts),
	})
}

func (s *Server) getLead(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w, r, false)
	if !ok {
		return
	}
	lead, found := res.Lead(chi.URLParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) updateLeadOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}
	if err := s.resolver.UpdateOverride(r.Context(), id, patch); err != nil {
		// The in-memory lead already reflects the patch.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   "override applied but not persisted",
			"applied": true,
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// current returns the published result, resolving first when nothing has
// been published yet or refresh is set.
func (s *Server) current(w http.ResponseWriter, r *http.Request, refresh bool) (*resolve.Result, bool) {
	res := s.resolver.Session().Current()
	if res != nil && !refresh {
		return res, true
	}
	res, err := s.resolver.Load(r.Context(), s.criteria)
	if err != nil {
		zap.L().Error("api: resolve", zap.Error(err))
		writeError(w, http.StatusInternalServerError, resolve.ErrLoadFailed.Error())
		return nil, false
	}
	return res, true
}

func parseOptions(v url.Values) (query.Options, error) {
	opts := query.Options{
		State:  v.Get("state"),
		Kind:   model.Kind(v.Get("kind")),
		Status: model.LeadStatus(v.Get("status")),
		Search: v.Get("search"),
		SortBy: strings.ToLower(v.Get("sort_by")),
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"min_score", &opts.MinScore},
		{"page", &opts.Page},
		{"page_size", &opts.PageSize},
	}
	for _, f := range ints {
		raw := v.Get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, eris.Errorf("%s must be a non-negative integer", f.key)
		}
		*f.dst = n
	}
	if raw := v.Get("desc"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, eris.New("desc must be a boolean")
		}
		opts.Desc = desc
	}
	return opts, opts.Validate()
}
