package utils

import "golang.org/x/crypto/bcrypt"

// PasswordHasher turns a submitted password into its stored form.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(stored, password string) bool
}

// NewPasswordHasher returns the hasher for a PASSWORD_HASHING mode.
func NewPasswordHasher(mode string) PasswordHasher {
	if mode == "bcrypt" {
		return BcryptHasher{Cost: bcrypt.DefaultCost}
	}
	return PlainHasher{}
}

// PlainHasher stores passwords unchanged.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Check(stored, password string) bool { return stored == password }

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of the password.
func (b BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check compares the bcrypt hashed password with its possible plaintext equivalent.
func (BcryptHasher) Check(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
