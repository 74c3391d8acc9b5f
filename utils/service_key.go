package utils

import "golang.org/x/crypto/bcrypt"

// HashServiceKey returns the bcrypt hash of a service API key; used by the
// ops tooling that provisions SERVICE_KEY_HASH.
func HashServiceKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckServiceKey compares a presented service key against the configured bcrypt hash.
func CheckServiceKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
