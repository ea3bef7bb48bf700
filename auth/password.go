package auth

import (
	"golang.org/x/crypto/bcrypt"

	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
)

// bcrypt ignores input past 72 bytes; truncate explicitly so hashing and
// verification agree on the effective password.
const maxPasswordBytes = 72

// HashPassword derives a bcrypt hash from the password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pcerrors.WrapFatal(err, "auth", "HashPassword", "hash password")
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
