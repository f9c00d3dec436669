package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
)

// MinPasswordLength is the shortest password the service accepts at signup.
const MinPasswordLength = 8

// ValidateCredential checks if the password meets minimum requirements
// before it is sent anywhere.
func ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// ValidateLogin performs the cheap checks a login form does before calling
// the service.
func ValidateLogin(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
