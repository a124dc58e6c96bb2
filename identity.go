/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identity is what the identity provider hands the room for a new connection.
type Identity struct {
	Email string
	Name  string
}

type Validator interface {
	Validate(identity string) (Identity, error)
}

// IdentityValidator derives a display name from an email address, optionally
// restricted to a single domain.
type IdentityValidator struct {
	AllowedDomain string
}

func (v IdentityValidator) Validate(identity string) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(identity))
	if email == "" {
		return Identity{}, &ValidationError{Err: ErrIdentityRequired}
	}

	domain := strings.ToLower(strings.TrimSpace(v.AllowedDomain))
	if domain != "" && !strings.HasSuffix(email, "@"+domain) {
		return Identity{}, &ValidationError{
			Err:    ErrIdentityDomain,
			Detail: "Email must end with @" + domain,
		}
	}

	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return Identity{}, &ValidationError{Err: ErrIdentityInvalid}
	}

	return Identity{Email: email, Name: displayName(local)}, nil
}

// displayName upper-cases the first rune of each dot-separated part and
// leaves the rest as is, so "jean-luc.picard" becomes "Jean-luc Picard".
func displayName(local string) string {
	upper := cases.Upper(language.Und)

	parts := strings.Split(local, ".")
	for i, part := range parts {
		_, size := utf8.DecodeRuneInString(part)
		if size == 0 {
			continue
		}
		parts[i] = upper.String(part[:size]) + part[size:]
	}

	return strings.Join(parts, " ")
}
