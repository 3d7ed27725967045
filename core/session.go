package core

import "time"

// Session represents a connected wallet session
type Session struct {
	ID          string      // Unique session identifier
	Address     string      // Wallet address exactly as the provider reported it
	Environment Environment // Runtime classification at connect time
	IssuedAt    time.Time   // When the session was created
	ExpiresAt   time.Time   // When the session expires
}
