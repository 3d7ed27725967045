package core

import "errors"

var (
	ErrNoProvider       = errors.New("no wallet provider available")
	ErrAlreadyCheckedIn = errors.New("already checked in for this date")
	ErrSigningRejected  = errors.New("signing request rejected")
	ErrBadMessageFormat = errors.New("signer rejected message format")
	ErrHostUnavailable  = errors.New("host capability unavailable")
	ErrStorageCorrupt   = errors.New("persisted record is corrupt")
	ErrInvalidAddress   = errors.New("invalid ethereum address")
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidToken     = errors.New("invalid token")
)
