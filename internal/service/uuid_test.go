package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestValidateID(t *testing.T) {
	v7, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("uuid.NewV7() failed: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"uuid v4", uuid.NewString(), false},
		{"uuid v7", v7.String(), false},
		{"upper case", "0190D8B2-7C1E-7ABC-8DEF-0123456789AB", false},
		{"empty", "", true},
		{"integer pk", "42", true},
		{"truncated", "0190d8b2-7c1e-7abc-8def", true},
		{"not hex", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidUUID) {
					t.Errorf("ValidateID(%q) = %v, want ErrInvalidUUID", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateID(%q) = %v, want nil", tt.id, err)
			}
		})
	}
}
