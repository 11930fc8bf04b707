package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the fallback when BCRYPT_COST is unset or
// nonsensical.  Host and admin logins are rare enough that the
// library default is not a latency concern.
const DefaultBcryptCost = bcrypt.DefaultCost

// HashPassword bcrypt-hashes a password chosen during registration or
// onboarding completion.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
