package inbox

import "crypto/subtle"

// Auth checks the shared admin secret.
type Auth struct {
	secret []byte
}

// NewAuth returns an Auth for secret. An empty secret authorizes nobody.
func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// IsAuthorized reports whether credential matches the secret, in constant
// time.
func (a *Auth) IsAuthorized(credential string) bool {
	if a == nil || len(a.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), a.secret) == 1
}
