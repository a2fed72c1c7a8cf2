package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentshop-backend/internal/apperrors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{
			name:   "validation is 400",
			err:    apperrors.Validation("quantity must be positive"),
			status: http.StatusBadRequest,
			kind:   "validation",
		},
		{
			name:   "not found is 404",
			err:    apperrors.NotFound("order 42 not found"),
			status: http.StatusNotFound,
			kind:   "not_found",
		},
		{
			name:   "conflict is 409",
			err:    apperrors.Conflict("order 42 was modified concurrently"),
			status: http.StatusConflict,
			kind:   "conflict",
		},
		{
			name:   "constraint is 422",
			err:    apperrors.Constraint("status rejected", errors.New("check violation")),
			status: http.StatusUnprocessableEntity,
			kind:   "constraint",
		},
		{
			name:   "timeout is 504",
			err:    apperrors.Timeout("query timed out", errors.New("deadline exceeded")),
			status: http.StatusGatewayTimeout,
			kind:   "timeout",
		},
		{
			name:   "persistence is 500",
			err:    apperrors.Persistence("insert failed", errors.New("boom")),
			status: http.StatusInternalServerError,
			kind:   "persistence",
		},
		{
			name:   "unclassified is 500",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			kind:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.kind, resp.Kind)
		})
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("pg: connection refused at 10.0.0.3"))

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal server error", resp.Error)
}
