package session

import "errors"

var (
	ErrIncompleteCredential = errors.New("response did not contain a token pair")
	ErrInvalidProfile       = errors.New("profile picture content is required")
)
