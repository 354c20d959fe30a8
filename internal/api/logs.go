package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/nxv4l2/internal/api/models"
	"github.com/smazurov/nxv4l2/internal/logging"
)

// registerLogRoutes registers runtime log level control.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-log-levels",
		Method:      http.MethodGet,
		Path:        "/api/logging",
		Summary:     "Log Levels",
		Description: "Get the effective log level of every module",
		Tags:        []string{"logging"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.LogLevelsResponse, error) {
		return &models.LogLevelsResponse{Body: models.LogLevelsData{Levels: logging.Levels()}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-log-level",
		Method:      http.MethodPut,
		Path:        "/api/logging/{module}",
		Summary:     "Set Log Level",
		Description: "Change a module's log level until the next restart or config reload",
		Tags:        []string{"logging"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *models.LogLevelRequest) (*models.LogLevelsResponse, error) {
		if !logging.SetLevel(input.Module, input.Body.Level) {
			return nil, huma.Error400BadRequest("invalid log level: " + input.Body.Level)
		}
		s.logger.Info("Log level changed", "module", input.Module, "level", input.Body.Level)
		return &models.LogLevelsResponse{Body: models.LogLevelsData{Levels: logging.Levels()}}, nil
	})
}
