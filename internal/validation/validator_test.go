package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/continue-watching/internal/errors"
	"github.com/listenupapp/continue-watching/internal/validation"
)

type clientMessage struct {
	Type  string   `json:"type" validate:"required,oneof=resize refresh"`
	Width *float64 `json:"width,omitempty" validate:"required_if=Type resize,omitempty,gte=0,lte=100000"`
}

func width(w float64) *float64 { return &w }

func TestValidator_ValidMessages(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(clientMessage{Type: "resize", Width: width(800)}))
	assert.NoError(t, v.Validate(clientMessage{Type: "resize", Width: width(0)}))
	assert.NoError(t, v.Validate(clientMessage{Type: "refresh"}))
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		msg       clientMessage
		wantField string
		wantMsg   string
	}{
		{"missing type", clientMessage{}, "type", "is required"},
		{"unknown type", clientMessage{Type: "zoom"}, "type", "must be one of: resize refresh"},
		{"resize without width", clientMessage{Type: "resize"}, "width", "is required"},
		{"negative width", clientMessage{Type: "resize", Width: width(-1)}, "width", "must be greater than or equal to 0"},
		{"absurd width", clientMessage{Type: "resize", Width: width(1e9)}, "width", "must be less than or equal to 100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.msg)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
			assert.Contains(t, domainErr.Message, tt.wantField)
		})
	}
}
