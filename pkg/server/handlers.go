package server

import (
	"encoding/json"
	"net/http"

	"github.com/daygrid/daygrid/pkg/cache"
	"github.com/daygrid/daygrid/pkg/engine"
	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/grid"
)

// requestEnvelope is the wire request shape.
type requestEnvelope struct {
	Type string      `json:"type"`
	ID   string      `json:"id"`
	Data requestData `json:"data"`
}

type requestData struct {
	Events  []event.Event `json:"events,omitempty"`
	Layouts []grid.Layout `json:"layouts,omitempty"`
}

// successEnvelope is the wire success shape. Result holds layouts or
// conflict reports depending on the operation.
type successEnvelope struct {
	Type     string            `json:"type"`
	ID       string            `json:"id"`
	Result   any               `json:"result"`
	Rejected []event.Rejection `json:"rejected,omitempty"`
}

// errorEnvelope is the wire error shape, always echoing the request id.
type errorEnvelope struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// handleCompute serves the full envelope: the operation comes from the
// body's type field.
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var env requestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		wrapped := apperrors.Wrap(apperrors.ErrCodeInvalidRequest, err, "decode request")
		s.writeError(w, env.ID, wrapped)
		return
	}

	op, err := engine.ParseOp(env.Type)
	if err != nil {
		s.writeError(w, env.ID, err)
		return
	}
	s.serve(w, r, engine.Request{
		Op:      op,
		ID:      env.ID,
		Events:  env.Data.Events,
		Layouts: env.Data.Layouts,
	})
}

// handleOp serves the convenience routes where the operation is fixed
// by the path and the body is the bare data object.
func (s *Server) handleOp(op engine.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data requestData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			wrapped := apperrors.Wrap(apperrors.ErrCodeInvalidRequest, err, "decode request")
			s.writeError(w, "", wrapped)
			return
		}
		s.serve(w, r, engine.Request{
			Op:      op,
			ID:      r.Header.Get("X-Request-Id"),
			Events:  data.Events,
			Layouts: data.Layouts,
		})
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, req engine.Request) {
	if req.ID == "" {
		req.ID = engine.NewCorrelationID()
	}

	key, cacheable := s.cacheKey(req)
	if cacheable {
		if body, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
			// Re-stamp the cached envelope with this request's id.
			var env successEnvelope
			if json.Unmarshal(body, &env) == nil {
				env.ID = req.ID
				writeJSON(w, http.StatusOK, env)
				return
			}
		}
	}

	resp, err := s.pool.Do(r.Context(), req)
	if err != nil {
		s.writeError(w, req.ID, err)
		return
	}
	if resp.Err != nil {
		s.writeError(w, resp.ID, resp.Err)
		return
	}

	env := successEnvelope{
		Type:     "Success",
		ID:       resp.ID,
		Rejected: resp.Rejected,
	}
	if req.Op == engine.OpDetectConflicts {
		env.Result = resp.Reports
	} else {
		env.Result = resp.Layouts
	}

	if cacheable {
		if body, merr := json.Marshal(env); merr == nil {
			ttl := cache.DefaultLayoutTTL
			if req.Op == engine.OpDetectConflicts {
				ttl = cache.DefaultConflictTTL
			}
			_ = s.cache.Set(r.Context(), key, body, ttl)
		}
	}
	writeJSON(w, http.StatusOK, env)
}

// cacheKey derives the memoization key for cacheable operations. The
// key binds the batch content to the policy that shapes the result, so
// a geometry or threshold change never serves a stale entry.
func (s *Server) cacheKey(req engine.Request) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	batch := s.keyer.BatchHash(req.Events)
	switch req.Op {
	case engine.OpComputeLayout:
		return s.keyer.LayoutKey(batch, s.cfg.Engine.Geometry), true
	case engine.OpDetectConflicts:
		return s.keyer.ConflictKey(batch, s.cfg.Engine.Thresholds), true
	}
	return "", false
}

func (s *Server) writeError(w http.ResponseWriter, id string, err error) {
	s.log.Error("request failed", "id", id, "err", err)
	writeJSON(w, statusFor(err), errorEnvelope{
		Type:  "Error",
		ID:    id,
		Error: apperrors.UserMessage(err),
	})
}
