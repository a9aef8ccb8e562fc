package errors

import (
	"strings"
	"testing"
)

func TestValidateTreeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "tree.json", false},
		{"valid snapshot", "12.json", false},
		{"valid upper ext", "TREE.JSON", false},
		{"valid with dash", "run-a1b2.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300) + ".json", true},
		{"no extension", "tree", true},
		{"wrong extension", "tree.yaml", true},
		{"with path /", "dir/tree.json", true},
		{"with path \\", "dir\\tree.json", true},
		{"null byte", "tr\x00ee.json", true},
		{"newline", "tr\nee.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTreeFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTreeFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTreeFilenameCodes(t *testing.T) {
	if err := ValidateTreeFilename("tree.txt"); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("wrong extension code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
	if err := ValidateTreeFilename("a/b.json"); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("path separator code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#10b981", false},
		{"#667EEA", false},
		{"#fff", false},
		{"", true},
		{"10b981", true},
		{"#10b98", true},
		{"#gggggg", true},
		{"green", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
