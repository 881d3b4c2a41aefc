// Package validate holds the pure form validation rules shared by the
// auth, onboarding and messaging forms. Each validator maps form values
// to a field→message error map; an absent key means the field is valid.
// Validation errors never leave the form layer.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Errors maps field names to human-readable messages.
type Errors map[string]string

// Valid reports whether no field failed validation.
func (e Errors) Valid() bool { return len(e) == 0 }

var emailRegexp = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const (
	MinPasswordLen = 6
	MinBioLen      = 10
	MaxBioLen      = 500
	MaxMessageLen  = 1000
)

// LoginValues are the fields of the login form.
type LoginValues struct {
	Email    string
	Password string
}

// Login validates the login form.
func Login(v LoginValues) Errors {
	errs := Errors{}
	if v.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailRegexp.MatchString(v.Email) {
		errs["email"] = "Email is invalid"
	}
	if v.Password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// RegistrationValues are the fields of the registration form.
type RegistrationValues struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeTerms      bool
}

// Registration validates the registration form.
func Registration(v RegistrationValues) Errors {
	errs := Errors{}
	if v.Name == "" {
		errs["name"] = "Name is required"
	}
	if v.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailRegexp.MatchString(v.Email) {
		errs["email"] = "Email is invalid"
	}
	if v.Password == "" {
		errs["password"] = "Password is required"
	} else if len(v.Password) < MinPasswordLen {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLen)
	}
	if v.ConfirmPassword == "" {
		errs["confirmPassword"] = "Please confirm your password"
	} else if v.Password != v.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}
	if !v.AgreeTerms {
		errs["agreeTerms"] = "You must agree to the terms and conditions"
	}
	return errs
}

// PersonalInfoValues are the fields of the onboarding personal info step.
type PersonalInfoValues struct {
	FirstName  string
	LastName   string
	Location   string
	Occupation string
	Bio        string
}

// PersonalInfo validates the personal info form.
func PersonalInfo(v PersonalInfoValues) Errors {
	errs := Errors{}
	if v.FirstName == "" {
		errs["firstName"] = "First name is required"
	}
	if v.LastName == "" {
		errs["lastName"] = "Last name is required"
	}
	if v.Location == "" {
		errs["location"] = "Location is required"
	}
	if v.Occupation == "" {
		errs["occupation"] = "Occupation is required"
	}
	switch {
	case v.Bio == "":
		errs["bio"] = "Bio is required"
	case len(v.Bio) < MinBioLen:
		errs["bio"] = fmt.Sprintf("Bio must be at least %d characters", MinBioLen)
	case len(v.Bio) > MaxBioLen:
		errs["bio"] = fmt.Sprintf("Bio must be less than %d characters", MaxBioLen)
	}
	return errs
}

// MessageValues are the fields of the message composer.
type MessageValues struct {
	Content string
}

// Message validates a message draft.
func Message(v MessageValues) Errors {
	errs := Errors{}
	content := strings.TrimSpace(v.Content)
	if content == "" {
		errs["content"] = "Message cannot be empty"
	} else if len(v.Content) > MaxMessageLen {
		errs["content"] = fmt.Sprintf("Message is too long (maximum %d characters)", MaxMessageLen)
	}
	return errs
}
