package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("email", "invalid email format"), http.StatusBadRequest},
		{"state conflict", NewStateConflict("payment", "completed"), http.StatusConflict},
		{"persistence", NewPersistence("save booking", errors.New("disk full")), http.StatusInternalServerError},
		{"wrapped persistence", fmt.Errorf("handler: %w", NewPersistence("save booking", errors.New("disk full"))), http.StatusInternalServerError},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"wrapped not found", fmt.Errorf("lookup salon: %w", ErrNotFound), http.StatusNotFound},
		{"unclassified", errors.New("something else"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, NewValidation("email", "invalid email format"), "email: invalid email format")
	assert.EqualError(t, NewValidation("", "page out of range"), "page out of range")
	assert.EqualError(t, NewStateConflict("payment", "completed"), "payment is already completed")

	cause := errors.New("connection reset")
	persistence := NewPersistence("update salon", cause)
	assert.EqualError(t, persistence, "update salon: connection reset")
	assert.ErrorIs(t, persistence, cause)

	delivery := &DeliveryError{Recipient: "owner@example.com", Err: errors.New("smtp down")}
	assert.EqualError(t, delivery, "delivery to owner@example.com failed: smtp down")
	assert.ErrorIs(t, delivery, delivery.Err)
}
