package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"com/lifenture/thai-field-engine/internal/logging"
)

// HandleLambda serves API Gateway proxy events. An empty path is the merge operation.
func (s *Service) HandleLambda(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID
	if requestID == "" {
		requestID = logging.NewRequestID()
	}
	ctx = logging.WithRequest(ctx, requestID)

	headers := map[string]string{"Content-Type": contentTypeJSON}

	status, payload := s.dispatch(ctx, request.HTTPMethod, request.Path, []byte(request.Body))
	responseBody, err := json.Marshal(payload)
	if err != nil {
		logging.FromContext(ctx).Error("failed to marshal response", zap.Error(err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"Failed to create response"}`,
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(responseBody),
	}, nil
}
