package validate

import (
	"strings"
	"testing"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		values    LoginValues
		wantField string
	}{
		{"valid", LoginValues{Email: "ana@example.com", Password: "secret"}, ""},
		{"missing email", LoginValues{Password: "secret"}, "email"},
		{"bad email", LoginValues{Email: "not-an-email", Password: "secret"}, "email"},
		{"missing password", LoginValues{Email: "ana@example.com"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Login(tt.values)
			if tt.wantField == "" {
				if !errs.Valid() {
					t.Errorf("Login() = %v, want no errors", errs)
				}
				return
			}
			if _, ok := errs[tt.wantField]; !ok {
				t.Errorf("Login() = %v, want error on %q", errs, tt.wantField)
			}
		})
	}
}

func TestRegistrationConfirmMismatch(t *testing.T) {
	errs := Registration(RegistrationValues{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "abc",
		ConfirmPassword: "abcd",
		AgreeTerms:      true,
	})
	if _, ok := errs["confirmPassword"]; !ok {
		t.Errorf("Registration() = %v, want confirmPassword mismatch error", errs)
	}
	// Short password also fails independently.
	if _, ok := errs["password"]; !ok {
		t.Errorf("Registration() = %v, want password length error", errs)
	}
}

func TestRegistrationSixCharPasswordPasses(t *testing.T) {
	errs := Registration(RegistrationValues{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "abcdef",
		ConfirmPassword: "abcdef",
		AgreeTerms:      true,
	})
	if _, ok := errs["password"]; ok {
		t.Errorf("password of 6 chars should pass length validation, got %v", errs)
	}
	if !errs.Valid() {
		t.Errorf("Registration() = %v, want no errors", errs)
	}
}

func TestRegistrationTerms(t *testing.T) {
	errs := Registration(RegistrationValues{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "abcdef",
		ConfirmPassword: "abcdef",
	})
	if _, ok := errs["agreeTerms"]; !ok {
		t.Errorf("Registration() = %v, want agreeTerms error", errs)
	}
}

func TestPersonalInfo(t *testing.T) {
	valid := PersonalInfoValues{
		FirstName:  "Ana",
		LastName:   "Reis",
		Location:   "Lisbon",
		Occupation: "Designer",
		Bio:        "I design things for a living.",
	}

	if errs := PersonalInfo(valid); !errs.Valid() {
		t.Errorf("PersonalInfo(valid) = %v, want no errors", errs)
	}

	empty := valid
	empty.Bio = ""
	if errs := PersonalInfo(empty); errs["bio"] == "" {
		t.Errorf("PersonalInfo(empty bio) = %v, want bio error", errs)
	}

	short := valid
	short.Bio = "short"
	if errs := PersonalInfo(short); errs["bio"] == "" {
		t.Errorf("PersonalInfo(short bio) = %v, want bio error", errs)
	}

	long := valid
	long.Bio = strings.Repeat("a", MaxBioLen+1)
	if errs := PersonalInfo(long); errs["bio"] == "" {
		t.Errorf("PersonalInfo(long bio) = %v, want bio error", errs)
	}
}

func TestMessage(t *testing.T) {
	if errs := Message(MessageValues{Content: "hello"}); !errs.Valid() {
		t.Errorf("Message(hello) = %v, want no errors", errs)
	}
	if errs := Message(MessageValues{Content: "   "}); errs["content"] == "" {
		t.Errorf("Message(blank) = %v, want content error", errs)
	}
	if errs := Message(MessageValues{Content: strings.Repeat("x", MaxMessageLen+1)}); errs["content"] == "" {
		t.Errorf("Message(too long) = %v, want content error", errs)
	}
}
