package utils

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

// argonConfig is shared so every hash carries the same cost parameters.
var argonConfig = argon2.DefaultConfig()

// HashPassword returns the argon2id PHC-encoded hash of password.
func HashPassword(password string) (string, error) {
	encoded, err := argonConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(encoded), nil
}

// VerifyPassword reports whether password matches encodedHash. A malformed
// hash is an error, a wrong password is not.
func VerifyPassword(encodedHash, password string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return ok, nil
}
