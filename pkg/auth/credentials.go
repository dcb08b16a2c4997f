package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the configured admin login. The password is either
// kept as a SHA-256 digest of the plain value or as a bcrypt hash.
type Credentials struct {
	username     [sha256.Size]byte
	password     [sha256.Size]byte
	passwordHash []byte
	configured   bool
}

// NewCredentials builds Credentials from configuration. When passwordHash
// is non-empty it is treated as a bcrypt hash and password is ignored.
// Credentials without a username or any password are unconfigured.
func NewCredentials(username, password, passwordHash string) *Credentials {
	c := &Credentials{
		username: sha256.Sum256([]byte(username)),
	}
	switch {
	case passwordHash != "":
		c.passwordHash = []byte(passwordHash)
	case password != "":
		c.password = sha256.Sum256([]byte(password))
	default:
		return c
	}
	c.configured = username != ""
	return c
}

// Configured reports whether admin login is possible at all.
func (c *Credentials) Configured() bool {
	return c != nil && c.configured
}

// Verify compares both values in constant time. Inputs are hashed first so
// unequal lengths do not short-circuit, and both comparisons always run.
func (c *Credentials) Verify(username, password string) bool {
	if !c.Configured() {
		return false
	}
	u := sha256.Sum256([]byte(username))
	userOK := subtle.ConstantTimeCompare(u[:], c.username[:])

	var passOK int
	if c.passwordHash != nil {
		if bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil {
			passOK = 1
		}
	} else {
		p := sha256.Sum256([]byte(password))
		passOK = subtle.ConstantTimeCompare(p[:], c.password[:])
	}
	return userOK&passOK == 1
}
