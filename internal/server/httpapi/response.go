// Package httpapi exposes the service layer over HTTP: a gin router,
// request middleware, and handlers that bind payloads, call services, and
// map the error taxonomy to status codes.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinecircle/cinecircle/internal/common"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps taxonomy errors onto HTTP status codes. Anything outside
// the taxonomy is an internal error and its message is not echoed back.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidEmail),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrPasswordTooShort),
		errors.Is(err, common.ErrMissingUserID),
		errors.Is(err, common.ErrAlreadyFriends),
		errors.Is(err, common.ErrListNameEmpty),
		errors.Is(err, common.ErrIsPublicNotBoolean):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotListOwner):
		return http.StatusForbidden
	case errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrWatchlistNotFound),
		errors.Is(err, common.ErrFriendsListUnavailable),
		errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUsernameTaken),
		errors.Is(err, common.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     msg,
		RequestID: c.GetString(ctxRequestIDKey),
	})
}
