package responseformat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

type payload struct {
	Tilt    float64 `json:"tilt"`
	Azimuth float64 `json:"azimuth"`
}

func TestWriteResponseJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/tilt", nil)

	require.NoError(t, NewFormatter(true).WriteResponse(rec, req, payload{Tilt: 55.6, Azimuth: 180}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"tilt":55.6,"azimuth":180}`, rec.Body.String())
}

func TestWriteResponseMsgPack(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/tilt?format=msgpack", nil)

	require.NoError(t, NewFormatter(false).WriteResponse(rec, req, payload{Tilt: 40, Azimuth: 0}))

	assert.Equal(t, MsgPackContentType, rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Contains(t, decoded, "tilt")
	assert.Contains(t, decoded, "azimuth")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		field      string
		constraint string
	}{
		{
			name:       "input error",
			err:        fmt.Errorf("obstacle 2: %w", &solar.InputError{Field: "distance", Value: 0, Constraint: "must be greater than 0"}),
			status:     http.StatusBadRequest,
			field:      "distance",
			constraint: "must be greater than 0",
		},
		{
			name:   "bare sentinel",
			err:    fmt.Errorf("unknown classification: %w", solar.ErrInvalidInput),
			status: http.StatusBadRequest,
		},
		{
			name:   "internal error",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/shading", nil)

			status, err := NewFormatter(false).WriteError(rec, req, tt.err)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.Equal(t, tt.field, body.Field)
			assert.Equal(t, tt.constraint, body.Constraint)
		})
	}
}
