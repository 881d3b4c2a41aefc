package account

import "testing"

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "default", false},
		{"valid with numbers", "work123", false},
		{"valid with hyphen", "my-account", false},
		{"valid with underscore", "my_account", false},
		{"valid single char", "a", false},
		{"empty", "", true},
		{"uppercase", "Default", true},
		{"space", "my account", true},
		{"dot", "my.account", true},
		{"special chars", "my@account", true},
		{"slash", "my/account", true},
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
