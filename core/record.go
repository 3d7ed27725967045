package core

import (
	"fmt"
	"sort"
	"strings"
)

// DayFormat is the calendar-date layout used for every check-in date.
// Dates are recorded at day granularity only, always derived from a single
// canonical "today" determined at the start of a check-in.
const DayFormat = "2006-01-02"

// MessageTag is the fixed literal prefix of every attestation message.
const MessageTag = "gm daily check-in"

// Record is the per-wallet check-in ledger entry. Dates stay sorted
// ascending and carry one signature each. Streak and Total are derived
// from Dates; serialized values exist for display and are recomputed on
// every read, never trusted.
type Record struct {
	Dates      []string          `json:"dates"`
	Streak     int               `json:"streak"`
	Total      int               `json:"total"`
	LastDate   string            `json:"lastDate,omitempty"`
	Signatures map[string]string `json:"signatures"`
}

// NewRecord returns the empty record a wallet starts with.
func NewRecord() *Record {
	return &Record{
		Dates:      []string{},
		Signatures: map[string]string{},
	}
}

// Has reports whether the record already holds a check-in for day.
func (r *Record) Has(day string) bool {
	i := sort.SearchStrings(r.Dates, day)
	return i < len(r.Dates) && r.Dates[i] == day
}

// Commit inserts day with its signature, keeping Dates sorted ascending,
// and refreshes the derived fields against today. A duplicate day returns
// ErrAlreadyCheckedIn with no mutation.
func (r *Record) Commit(day, signature, today string) error {
	if r.Has(day) {
		return ErrAlreadyCheckedIn
	}

	i := sort.SearchStrings(r.Dates, day)
	r.Dates = append(r.Dates, "")
	copy(r.Dates[i+1:], r.Dates[i:])
	r.Dates[i] = day

	if r.Signatures == nil {
		r.Signatures = map[string]string{}
	}
	r.Signatures[day] = signature
	r.LastDate = day
	r.Refresh(today)

	return nil
}

// Refresh recomputes the derived streak and total fields as of today.
func (r *Record) Refresh(today string) {
	r.Total = len(r.Dates)
	r.Streak = ComputeStreak(r.Dates, today)
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		Dates:      make([]string, len(r.Dates)),
		Streak:     r.Streak,
		Total:      r.Total,
		LastDate:   r.LastDate,
		Signatures: make(map[string]string, len(r.Signatures)),
	}
	copy(clone.Dates, r.Dates)
	for day, sig := range r.Signatures {
		clone.Signatures[day] = sig
	}
	return clone
}

// NormalizeAddress lowercases a wallet address for use as a ledger key.
// Addresses are commonly displayed mixed-case but must dedupe identically.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// AttestationMessage is the deterministic text a wallet signs for one
// check-in. The address goes in exactly as held by the session, not
// re-normalized.
func AttestationMessage(address, date string) string {
	return fmt.Sprintf("%s\naddress: %s\ndate: %s", MessageTag, address, date)
}
