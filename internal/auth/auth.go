// Package auth provides buying-group session authentication using the
// site's CSRF-protected login form.
package auth

import (
	"fmt"
	"net/url"
)

// Credentials holds the account login for the buying-group site.
type Credentials struct {
	Username string // Account email address
	Password string
}

// LoadCredentials validates and wraps the configured account login.
func LoadCredentials(username, password string) (*Credentials, error) {
	if username == "" {
		return nil, fmt.Errorf("site username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("site password is required")
	}

	return &Credentials{
		Username: username,
		Password: password,
	}, nil
}

// LoginForm builds the form body for the login POST. The site expects the
// CSRF token from the login page under "_token" and the account email
// under "email"; "remember" keeps the session cookie long-lived.
func (c *Credentials) LoginForm(csrfToken string) url.Values {
	return url.Values{
		"_token":   {csrfToken},
		"email":    {c.Username},
		"password": {c.Password},
		"remember": {"on"},
	}
}
