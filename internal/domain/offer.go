package domain

import (
	"fmt"
	"time"
)

// OfferStatus represents the current status of a dispatch offer.
type OfferStatus string

const (
	OfferStatusOffered  OfferStatus = "OFFERED"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
	OfferStatusTimeout  OfferStatus = "TIMEOUT"
)

// ParseOfferStatus validates a raw status string at the boundary.
func ParseOfferStatus(raw string) (OfferStatus, error) {
	switch s := OfferStatus(raw); s {
	case OfferStatusOffered, OfferStatusAccepted, OfferStatusRejected, OfferStatusTimeout:
		return s, nil
	default:
		return "", fmt.Errorf("unknown offer status %q", raw)
	}
}

// IsOpen reports whether the offer can still be accepted or rejected.
// Only OFFERED is open; everything else is terminal.
func (s OfferStatus) IsOpen() bool {
	return s == OfferStatusOffered
}

// DispatchOffer is a time-boxed proposal linking one order to one
// candidate driver. At most one offer per order ever reaches ACCEPTED;
// (OrderID, DriverID) is unique.
type DispatchOffer struct {
	ID        string
	OrderID   string
	DriverID  string
	Status    OfferStatus
	ExpiresAt time.Time // zero means no expiry
	RateCents int64     // driver's proposed delivery rate per km, minor units
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the offer's window has elapsed at the given time.
func (o *DispatchOffer) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt)
}
