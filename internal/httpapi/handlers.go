package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/snonux/jsontranslate/internal"
	"codeberg.org/snonux/jsontranslate/internal/domain"
)

// StatusClientClosedRequest is reported when the client went away before
// the translation finished.
const StatusClientClosedRequest = 499

// Translate handles POST /translate.
func (s *Server) Translate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.proc.ProcessRequest(c.Request.Context(), body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.write(c, http.StatusOK, domain.NewResponse(result))
}

// Version handles GET /version.
func (s *Server) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":     internal.Version,
		"environment": s.cfg.Environment,
	})
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(c *gin.Context) {
	tr := s.proc.Translator()
	if err := tr.IsAvailable(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"provider": tr.Name(),
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": tr.Name(),
	})
}

// NotFound answers unknown routes with an error envelope.
func (s *Server) NotFound(c *gin.Context) {
	s.write(c, http.StatusNotFound, &domain.Response{
		Status: domain.StatusError,
		Error:  "not found",
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", c.GetString(requestIDKey), "error", err)
	}
	s.write(c, status, domain.ErrorResponse(err))
}

func (s *Server) write(c *gin.Context, status int, resp *domain.Response) {
	data, err := resp.Encode()
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8",
			[]byte(`{"status":"error","error":"failed to encode response"}`+"\n"))
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTooDeep):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
