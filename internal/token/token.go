package token

import (
	"net/http"
	"net/url"

	"github.com/blacktop/postdeck/internal/logutil"
)

// MissingMessage is shown to the user when no signing token is available.
const MissingMessage = "CSRF token missing! Try refreshing the page."

// Warner surfaces a user-visible warning.
type Warner interface {
	Warn(msg string)
}

// Provider reads the request-signing token from the session's cookie jar.
type Provider struct {
	jar    http.CookieJar
	origin *url.URL
	name   string
	warn   Warner
}

// New returns a Provider looking up the cookie called name for origin.
func New(jar http.CookieJar, origin *url.URL, name string, warn Warner) *Provider {
	return &Provider{jar: jar, origin: origin, name: name, warn: warn}
}

// Token returns the signing token. A missing token is logged and surfaced as a
// warning but never treated as fatal: callers send the request anyway and let
// the backend reject it.
func (p *Provider) Token() (string, bool) {
	if p.jar != nil && p.origin != nil {
		for _, c := range p.jar.Cookies(p.origin) {
			if c.Name == p.name && c.Value != "" {
				logutil.Debugf("signing token retrieved from cookie %q", p.name)
				return c.Value, true
			}
		}
	}

	logutil.Errorf("signing token %q not found in cookies", p.name)
	if p.warn != nil {
		p.warn.Warn(MissingMessage)
	}
	return "", false
}

// Seed stores the cookies from a raw Cookie header value in jar for origin.
func Seed(jar http.CookieJar, origin *url.URL, header string) error {
	if header == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return err
	}
	jar.SetCookies(origin, cookies)
	return nil
}
