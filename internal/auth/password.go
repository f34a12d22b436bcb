package auth

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// at validation time instead of being silently truncated.
const MaxPasswordBytes = 72

func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plain matches digest. A malformed digest
// verifies as false rather than erroring out.
func VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
