package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Invalid("x"), http.StatusBadRequest},
		{ScheduleViolation("x"), http.StatusBadRequest},
		{AlreadyMarked("x"), http.StatusBadRequest},
		{SessionInactive("x"), http.StatusBadRequest},
		{InvalidCode("x"), http.StatusBadRequest},
		{NetworkMismatch("x"), http.StatusBadRequest},
		{Unauthenticated("x"), http.StatusUnauthorized},
		{NotAuthorized("x"), http.StatusForbidden},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Internal("x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestToHTTPStatusWrapped(t *testing.T) {
	err := fmt.Errorf("end session: %w", NotFound("session not found"))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(err))
}

func TestFromErr(t *testing.T) {
	api := FromErr(AlreadyMarked("attendance already marked"))
	assert.Equal(t, CodeAlreadyMarked, api.Code)
	assert.Equal(t, "attendance already marked", api.Message)

	// 未知のエラーは中身を漏らさずINTERNALへ丸める
	api = FromErr(errors.New("dial tcp: connection refused"))
	assert.Equal(t, CodeInternal, api.Code)
	assert.Equal(t, "internal error", api.Message)
}
