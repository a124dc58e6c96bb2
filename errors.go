/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIdentityRequired  = errors.New("email is required")
	ErrIdentityInvalid   = errors.New("invalid email format")
	ErrIdentityDomain    = errors.New("email domain not allowed")
	ErrDuplicateIdentity = errors.New("a user with this name is already in the room")
	ErrAlreadyJoined     = errors.New("this connection has already joined the room")
)

// ValidationError reports an identity the provider refused. It unwraps to one
// of the ErrIdentity* sentinels.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}

	return e.Detail
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
