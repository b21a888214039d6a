// Package smtp submits messages to an SMTP relay over implicit TLS.
package smtp

import (
	"github.com/emersion/go-sasl"
)

// Authenticator holds the relay credentials and picks a SASL mechanism the
// relay advertises.
type Authenticator struct {
	username string
	password string
}

// NewAuthenticator creates an Authenticator with the given credentials.
func NewAuthenticator(username, password string) *Authenticator {
	return &Authenticator{
		username: username,
		password: password,
	}
}

// Mechanism returns PLAIN unless the relay only offers LOGIN.
// supports reports whether the relay advertises a mechanism.
func (a *Authenticator) Mechanism(supports func(mech string) bool) string {
	if !supports(sasl.Plain) && supports(sasl.Login) {
		return sasl.Login
	}
	return sasl.Plain
}

// Client returns the SASL client for the chosen mechanism.
func (a *Authenticator) Client(supports func(mech string) bool) sasl.Client {
	if a.Mechanism(supports) == sasl.Login {
		return sasl.NewLoginClient(a.username, a.password)
	}
	// AUTH PLAIN format: authzid\0authcid\0password, authzid left empty
	return sasl.NewPlainClient("", a.username, a.password)
}
