/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDerivesDisplayName(t *testing.T) {
	tests := []struct {
		identity string
		email    string
		name     string
	}{
		{"alice@example.com", "alice@example.com", "Alice"},
		{"  John.Doe@Example.com ", "john.doe@example.com", "John Doe"},
		{"MARY@example.com", "mary@example.com", "Mary"},
		{"bob", "bob", "Bob"},
		{"jean-luc.picard@example.com", "jean-luc.picard@example.com", "Jean-luc Picard"},
		{"o'brien@example.com", "o'brien@example.com", "O'brien"},
		{"élodie@example.com", "élodie@example.com", "Élodie"},
	}

	v := IdentityValidator{}
	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			ident, err := v.Validate(tt.identity)
			require.NoError(t, err)
			assert.Equal(t, tt.email, ident.Email)
			assert.Equal(t, tt.name, ident.Name)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name     string
		domain   string
		identity string
		want     error
	}{
		{"empty", "", "", ErrIdentityRequired},
		{"whitespace", "", "   ", ErrIdentityRequired},
		{"no local part", "", "@example.com", ErrIdentityInvalid},
		{"wrong domain", "example.com", "bob@other.com", ErrIdentityDomain},
		{"domain as suffix only", "example.com", "bob@notexample.com", ErrIdentityDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IdentityValidator{AllowedDomain: tt.domain}.Validate(tt.identity)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestValidateAllowedDomain(t *testing.T) {
	v := IdentityValidator{AllowedDomain: " Example.COM "}

	ident, err := v.Validate("Jane.Roe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", ident.Name)

	_, err = v.Validate("jane@example.org")
	require.Error(t, err)
	assert.Equal(t, "Email must end with @example.com", err.Error())
}
