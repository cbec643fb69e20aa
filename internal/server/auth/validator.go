package auth

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	MaxPasswordBytes = 72
)

var validate = validator.New()

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwertyuiop": {}, "qwerty123": {}, "iloveyou": {},
	"sunshine": {}, "princess": {}, "football": {}, "baseball": {}, "welcome1": {},
	"abc12345": {}, "letmein1": {}, "trustno1": {}, "superman": {}, "starwars": {},
	"11111111": {}, "00000000": {}, "87654321": {}, "admin123": {}, "changeme": {},
	"whatever": {}, "dragon123": {}, "monkey123": {}, "1q2w3e4r": {}, "zaq12wsx": {},
}

// ValidatePassword checks password against the strength policy and returns
// one message per broken rule. A nil result means the password is
// acceptable. userName feeds the similarity rule and may be empty.
func ValidatePassword(password, userName string) []string {
	var problems []string

	if err := validate.Var(password, fmt.Sprintf("min=%d", MinPasswordLength)); err != nil {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}

	if len(password) > MaxPasswordBytes {
		problems = append(problems, fmt.Sprintf("This password is too long. It must contain at most %d bytes.", MaxPasswordBytes))
	}

	if isSimilar(password, userName) {
		problems = append(problems, "The password is too similar to the username.")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}

	if password != "" && validate.Var(password, "numeric") == nil {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

func isSimilar(password, userName string) bool {
	if len(userName) < 3 || password == "" {
		return false
	}
	p := strings.ToLower(password)
	u := strings.ToLower(userName)
	return strings.Contains(p, u) || strings.Contains(u, p)
}
