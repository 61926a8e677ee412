package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/service"
	"Spatialynk-App/internal/logging"
	"Spatialynk-App/internal/usecase"
)

// writeError エラーの種類に応じたステータスコードで応答する
func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.FullPath()).Msg("リクエスト処理に失敗")
	}
	c.JSON(status, gin.H{
		"error":   code,
		"message": err.Error(),
	})
}

func classify(err error) (int, string) {
	var (
		reqErr       *model.RequestError
		malformedErr *model.MalformedResponseError
	)
	switch {
	case errors.Is(err, usecase.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, usecase.ErrEmptyPrompt), errors.Is(err, model.ErrInvalidLevel):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, service.ErrStaleResponse):
		return http.StatusConflict, "stale_response"
	case errors.Is(err, service.ErrEmptyLevel):
		return http.StatusConflict, "empty_level"
	case errors.Is(err, service.ErrNoUserLocation):
		return http.StatusConflict, "no_user_location"
	case errors.Is(err, model.ErrCircuitOpen), errors.Is(err, usecase.ErrAnalyticsUnavailable):
		return http.StatusServiceUnavailable, "service_unavailable"
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, "malformed_response"
	case errors.As(err, &reqErr):
		return http.StatusBadGateway, "recommender_error"
	}
	return http.StatusInternalServerError, "internal_error"
}
