package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/podreg/runtime/pod"
)

func TestRenderError_RegistryErrors(t *testing.T) {
	reg := pod.NewRegistry()

	_, unknownPod := reg.Find("missing", true)
	_, invalid := reg.FindType("nope", true)
	_, err := reg.Add("a")
	require.NoError(t, err)
	_, dup := reg.Add("a")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown pod", unknownPod, http.StatusNotFound, pod.CodeUnknownPod},
		{"invalid name", invalid, http.StatusBadRequest, pod.CodeInvalidName},
		{"duplicate", fmt.Errorf("wrapped: %w", dup), http.StatusConflict, pod.CodeDuplicatePod},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RenderError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "error", body.Error)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.err.Error(), body.Message)
		})
	}
}

func TestRenderJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderJSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
