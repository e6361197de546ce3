package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/service/admin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps a domain error kind to a status code and body.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.FullPath()).Warn("request failed")
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, admin.ErrDuplicateName):
		return http.StatusBadRequest, "duplicate_name"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrServiceRejected):
		return http.StatusBadGateway, "service_rejected"
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, "service_unreachable"
	}
	return http.StatusInternalServerError, "internal_error"
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: err.Error()})
}
