package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNoData          = errors.New("no data")
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidFee      = errors.New("invalid fee fraction")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrLockHeld        = errors.New("lock already held")
)

// RecordKind names the raw record family a MalformedRecordError came from.
type RecordKind string

const (
	KindListing     RecordKind = "listing"
	KindSale        RecordKind = "sale"
	KindDay         RecordKind = "day"
	KindSnapshot    RecordKind = "snapshot"
	KindPlayerCount RecordKind = "player_count"
)

// MalformedRecordError reports one raw record that could not be normalized.
// Index is the record's position in the input slice.
type MalformedRecordError struct {
	Kind   RecordKind
	Item   ItemID
	Market Market
	Day    Date
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed %s record #%d", e.Kind, e.Index)
	if e.Item != "" {
		fmt.Fprintf(&b, " item=%q", e.Item)
	}
	if e.Market != "" {
		fmt.Fprintf(&b, " market=%s", e.Market)
	}
	if !e.Day.IsZero() {
		fmt.Fprintf(&b, " day=%s", e.Day)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Is makes errors.Is(err, ErrMalformedRecord) match.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
