package errors

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/flownote-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "code", err: code.ErrorNoteNotFound, want: code.ErrorNoteNotFound.Code()},
		{name: "wrapped code", err: fmt.Errorf("load: %w", code.ErrorNoteNotFound), want: code.ErrorNoteNotFound.Code()},
		{name: "app error", err: NewAppError(code.ErrorLocalStore, fmt.Errorf("disk")), want: code.ErrorLocalStore.Code()},
		{name: "unknown", err: fmt.Errorf("boom"), want: code.ErrorServerInternal.Code()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToAppError(tt.err).Code)
		})
	}
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(code.ErrorNoteNotFound, code.ErrorNoteNotFound))
	assert.True(t, IsCode(Wrap(code.ErrorLocalStore, fmt.Errorf("x")), code.ErrorLocalStore))
	assert.False(t, IsCode(fmt.Errorf("x"), code.ErrorNoteNotFound))
	assert.False(t, IsCode(nil, code.ErrorNoteNotFound))
	assert.Nil(t, Wrap(code.ErrorLocalStore, nil))
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponse(c, code.ErrorNoNotesToExport)

	var body AppError
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, code.ErrorNoNotesToExport.Code(), body.Code)
	assert.False(t, body.Status)
	assert.Equal(t, code.ErrorNoNotesToExport.Msg(), body.Message)
}
