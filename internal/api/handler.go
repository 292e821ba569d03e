package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"com/lifenture/thai-field-engine/internal/logging"
)

const contentTypeJSON = "application/json"

type errorBody struct {
	Error string `json:"error"`
}

type statuser interface {
	Status() int
}

// invoke decodes a JSON body into Req, runs op and returns the status and payload to encode
func invoke[Req, Resp any](ctx context.Context, body []byte, op func(context.Context, Req) (Resp, error)) (int, any) {
	logger := logging.FromContext(ctx)

	var req Req
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Warn("failed to unmarshal request body", zap.Error(err))
		return http.StatusBadRequest, errorBody{Error: "Invalid input"}
	}

	resp, err := op(ctx, req)
	if err != nil {
		return failure(ctx, err)
	}

	if s, ok := any(resp).(statuser); ok {
		return s.Status(), resp
	}
	return http.StatusOK, resp
}

func failure(ctx context.Context, err error) (int, any) {
	logger := logging.FromContext(ctx)
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	return status, errorBody{Error: message}
}

// templateIDFromPath extracts the id of /templates/{id}/fields
func templateIDFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/templates/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/fields")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// dispatch routes a method and path to a service operation
func (s *Service) dispatch(ctx context.Context, method, path string, body []byte) (int, any) {
	method = strings.ToUpper(method)
	path = strings.TrimSuffix(path, "/")

	if id, ok := templateIDFromPath(path); ok {
		switch method {
		case "", http.MethodGet:
			resp, err := s.GetFields(ctx, id)
			if err != nil {
				return failure(ctx, err)
			}
			return http.StatusOK, resp
		case http.MethodPut:
			return invoke(ctx, body, func(ctx context.Context, req FieldsRequest) (FieldsResponse, error) {
				return s.PutFields(ctx, id, req)
			})
		case http.MethodDelete:
			if err := s.DeleteFields(ctx, id); err != nil {
				return failure(ctx, err)
			}
			return http.StatusOK, map[string]any{"template_id": id, "deleted": true}
		}
		return http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"}
	}

	if method != "" && method != http.MethodPost {
		return http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"}
	}
	switch path {
	case "/extract":
		return invoke(ctx, body, s.Extract)
	case "/validate":
		return invoke(ctx, body, s.Validate)
	case "/render":
		return invoke(ctx, body, s.Render)
	case "", "/merge":
		return invoke(ctx, body, s.Merge)
	}
	return http.StatusNotFound, errorBody{Error: "Not found"}
}
