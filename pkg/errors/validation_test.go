package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"node", "n12", false},
		{"uuid", "3f0b8f5e-1c2d-4e5f-8a9b-0c1d2e3f4a5b", false},
		{"edge", "en0-n1", false},
		{"dotted", "a.b_c", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"slash", "n0/../n1", true},
		{"space", "n 1", true},
		{"leading dash", "-n1", true},
		{"null byte", "n\x001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("node ID", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{" YAML ", "yaml", false},
		{"svg", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := ValidateFormat(tt.format, "json", "yaml")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	if err := ValidateKey("name with spaces [0]"); err != nil {
		t.Errorf("ValidateKey() = %v, want nil", err)
	}
	if err := ValidateKey("bad\nkey"); err == nil {
		t.Error("ValidateKey() = nil, want error for control characters")
	}
}
