// Package auth injects slurmrestd credentials into outgoing requests and
// acquires short-lived JWTs from the local scontrol installation.
package auth

import "net/http"

const (
	userHeader  = "X-SLURM-USER-NAME"
	tokenHeader = "X-SLURM-USER-TOKEN"
)

// Credential applies one auth mode's headers to an outgoing request. The
// client applies whichever credential it was built with before every call,
// uniformly across the live and accounting endpoints.
type Credential interface {
	Apply(h http.Header)
}

// TokenCredential is bearer-token mode: a user-name header plus a JWT header
// on every request.
type TokenCredential struct {
	UserName string
	Token    string
}

func (c TokenCredential) Apply(h http.Header) {
	h.Set(userHeader, c.UserName)
	h.Set(tokenHeader, c.Token)
}

// LocalCredential adds nothing; the transport runs as an operating-system
// principal slurmrestd already trusts (munge socket mode).
type LocalCredential struct{}

func (LocalCredential) Apply(http.Header) {}
