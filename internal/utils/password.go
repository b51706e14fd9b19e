package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash stored on an account.  A cost
// outside bcrypt's supported range (for example a misconfigured
// BCRYPT_COST) falls back to the library default rather than failing
// registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.  Only the
// login path calls this; every other read strips the hash in projection.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
