package auth

import "golang.org/x/crypto/bcrypt"

const MinBCryptCost = 10

// HashPassword returns a salted bcrypt digest. Costs below MinBCryptCost are raised.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinBCryptCost {
		cost = MinBCryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches digest. A malformed digest never matches.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
