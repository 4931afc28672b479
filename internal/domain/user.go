// Package domain contains entity without transport, just meta-data and the playback rules
package domain

import (
	"errors"
	"unicode/utf8"
)

const MaxUsernameLen = 64

var ErrUsernameTooLong = errors.New("username too long")

// ConnID identifies one live transport session. It is assigned by the
// transport layer and never generated by the room core.
type ConnID string

// NormalizeUsername keeps announced names within MaxUsernameLen.
// An empty name is allowed: the protocol layer decides whether it is required.
func NormalizeUsername(username string) (string, error) {
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return username, nil
}
