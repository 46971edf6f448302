package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "plain address", email: "ana@example.com", wantErr: false},
		{name: "subdomain", email: "ana@trips.example.com", wantErr: false},
		{name: "plus tag", email: "ana+trips@example.com", wantErr: false},
		{name: "no at sign", email: "ana.example.com", wantErr: true},
		{name: "no domain", email: "ana@", wantErr: true},
		{name: "no local part", email: "@example.com", wantErr: true},
		{name: "no dot in domain", email: "ana@localhost", wantErr: true},
		{name: "empty", email: "", wantErr: true},
		{name: "embedded space", email: "ana @example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "long enough", password: "correct horse", wantErr: false},
		{name: "exactly eight runes", password: "12345678", wantErr: false},
		{name: "seven multibyte runes", password: "pässwör", wantErr: true},
		{name: "too short", password: "1234567", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "full name", input: "Ana Silva", wantErr: false},
		{name: "two runes", input: "Ed", wantErr: false},
		{name: "hyphenated", input: "Mary-Jane", wantErr: false},
		{name: "one rune", input: "E", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
