package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/overrides"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) tierHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.breakers.Snapshot())
}

func (s *Server) listOverrides(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.GetAll(r.Context())
	if err != nil {
		zap.L().Error("api: list overrides", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read overrides")
		return
	}
	if all == nil {
		all = map[string]model.Override{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) putOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}
	if err := s.store.Put(r.Context(), id, patch); err != nil {
		if eris.Is(err, overrides.ErrEmptyID) {
			writeError(w, http.StatusBadRequest, "institution id is required")
			return
		}
		zap.L().Error("api: put override", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to write override")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodePatch reads and validates an override body. It writes a 400 and
// returns false when the body is unusable.
func decodePatch(w http.ResponseWriter, r *http.Request) (model.Override, bool) {
	var patch model.Override
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return patch, false
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return patch, false
	}
	return patch, true
}
