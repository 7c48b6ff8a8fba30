package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rajamantri/internal/model"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
		{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{model.ErrRoleNotFound, http.StatusNotFound, CodeRoleNotFound},
		{model.ErrRoomNotJoinable, http.StatusConflict, CodeInvalidRoomState},
		{model.ErrResultNotReady, http.StatusConflict, CodeInvalidRoomState},
		{model.ErrNotMantri, http.StatusForbidden, CodeNotMantri},
		{model.ErrNotInRoom, http.StatusForbidden, CodeNotInRoom},
		{model.ErrAlreadySubmitted, http.StatusConflict, CodeAlreadySubmitted},
		{model.ErrInvalidTarget, http.StatusBadRequest, CodeInvalidTarget},
		{model.ErrRoomFull, http.StatusConflict, CodeRoomFull},
		{model.ErrAlreadyInRoom, http.StatusConflict, CodeAlreadyInRoom},
		{model.ErrUsernameRequired, http.StatusBadRequest, CodeInvalidRequest},
		{model.WrapRepository("get room", errors.New("timeout")), http.StatusInternalServerError, CodeStorageError},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.err), func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestStorageErrorHidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.WrapRepository("get room", errors.New("password=hunter2")))

	assert.NotContains(t, rr.Body.String(), "hunter2")
}
