package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/meteo-tuya/internal/domain/meteo"
	apperrors "github.com/yanqian/meteo-tuya/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	meteoSvc meteo.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(meteoSvc meteo.Service, logger *slog.Logger) *Handler {
	return &Handler{
		meteoSvc: meteoSvc,
		logger:   logger.With("component", "http.handler"),
	}
}

// Meteo returns the current station reading.
func (h *Handler) Meteo(c *gin.Context) {
	reading, err := h.meteoSvc.Current(c.Request.Context())
	if err != nil {
		abortWithError(c, upstreamError(err))
		return
	}
	c.JSON(http.StatusOK, reading)
}

// Health reports process liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// upstreamError renders domain failures as the flat envelope downstream consumers expect.
func upstreamError(err error) *HTTPError {
	appErr, ok := apperrors.As(err)
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
	}
	body := gin.H{
		"error": appErr.Code,
		"raw":   appErr.Data,
	}
	if appErr.Code != meteo.CodeNotSuccess {
		body["detail"] = errMessage(appErr.Err)
	}
	httpErr := NewHTTPError(http.StatusInternalServerError, appErr.Code, appErr.Message, err)
	httpErr.Body = body
	return httpErr
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
