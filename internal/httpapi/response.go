package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/forum"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/gin-gonic/gin"
)

var errMissingToken = errors.New("missing or invalid token")

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// respondServiceError maps service errors to status codes
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err)
	case errors.Is(err, auth.ErrAccountExists):
		respondError(c, http.StatusConflict, "account_exists", err)
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, forum.ErrInvalidInput),
		errors.Is(err, progress.ErrInvalidInput),
		errors.Is(err, quiz.ErrInvalidInput),
		errors.Is(err, chatbot.ErrEmptyMessage):
		respondError(c, http.StatusBadRequest, "invalid_input", err)
	default:
		s.log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		respondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
	}
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// idParam parses a numeric path parameter, answering 400 when it is not one
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", errors.New("invalid "+name))
		return 0, false
	}
	return id, true
}
