package utils

import (
	"context"
	"errors"
	"net/http"

	"github.com/okushigue/rzqr/internal/domain"
)

// StatusForError maps a pipeline error kind to an HTTP status code
func StatusForError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindConfiguration, domain.KindPrecision:
		return http.StatusBadRequest
	case domain.KindInvalidCounts:
		return http.StatusBadGateway
	case domain.KindBackendUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindExecutionTimeout:
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// StatusForBody maps a request body decode failure to an HTTP status code
func StatusForBody(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
