package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"com/lifenture/thai-field-engine/internal/logging"
)

const maxBodyBytes = 32 << 20

// NewRouter exposes the service over plain HTTP for local runs
func NewRouter(s *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Post("/extract", s.serve)
	r.Post("/validate", s.serve)
	r.Post("/render", s.serve)
	r.Post("/merge", s.serve)
	r.Get("/templates/{templateID}/fields", s.serve)
	r.Put("/templates/{templateID}/fields", s.serve)
	r.Delete("/templates/{templateID}/fields", s.serve)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = logging.NewRequestID()
		}
		w.Header().Set("X-Request-Id", requestID)

		ctx := logging.WithRequest(r.Context(), requestID)
		logging.FromContext(ctx).Debug("request",
			zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid input"})
		return
	}

	path := r.URL.Path
	if id := chi.URLParam(r, "templateID"); id != "" {
		path = "/templates/" + id + "/fields"
	}
	status, payload := s.dispatch(r.Context(), r.Method, path, body)
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.L().Warn("failed to write response", zap.Error(err))
	}
}
