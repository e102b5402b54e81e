package transport

import "net/http"

// SPAPIAccessTokenHeader carries the LWA access token on Selling Partner API calls.
const SPAPIAccessTokenHeader = "x-amz-access-token"

// Authenticator puts a credential on an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth leaves requests untouched. Fixture servers use it.
type NoAuth struct{}

// Apply does nothing.
func (NoAuth) Apply(*http.Request, string) {}

// HeaderAuth sends the token verbatim in Header.
type HeaderAuth struct {
	Header string
}

// Apply sets the header.
func (a HeaderAuth) Apply(req *http.Request, token string) {
	req.Header.Set(a.Header, token)
}

// SPAPIAuth returns the authenticator the Selling Partner API expects.
func SPAPIAuth() Authenticator {
	return HeaderAuth{Header: SPAPIAccessTokenHeader}
}
