package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", domain.NewError(domain.KindConfiguration, "op", nil), http.StatusBadRequest},
		{"precision", domain.NewError(domain.KindPrecision, "op", nil), http.StatusBadRequest},
		{"invalid counts", domain.NewError(domain.KindInvalidCounts, "op", nil), http.StatusBadGateway},
		{"unavailable", domain.NewError(domain.KindBackendUnavailable, "op", nil), http.StatusServiceUnavailable},
		{"timeout", domain.NewError(domain.KindExecutionTimeout, "op", nil), http.StatusGatewayTimeout},
		{"computation", domain.NewError(domain.KindComputation, "op", nil), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("run: %w", domain.NewError(domain.KindPrecision, "op", nil)), http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestStatusForBody(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusForBody(&http.MaxBytesError{Limit: 10}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusForBody(fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 10})))
	assert.Equal(t, http.StatusBadRequest, StatusForBody(errors.New("unexpected EOF")))
}
