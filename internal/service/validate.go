package service

import (
	"strings"

	"github.com/AndersonGC/dryfit/internal/apperror"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// normalizeEmail trims and checks the address syntax.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return "", apperror.Validation("a valid email is required")
	}
	return email, nil
}

func checkPassword(password string) error {
	if len(password) < 6 {
		return apperror.Validation("password must be at least 6 characters")
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return "", apperror.Validation("name must be at least 2 characters")
	}
	return name, nil
}
