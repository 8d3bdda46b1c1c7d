package domain

import (
	"testing"
	"time"
)

func TestOfferExpired(t *testing.T) {
	now := time.Now()

	past := &DispatchOffer{ExpiresAt: now.Add(-time.Second)}
	if !past.Expired(now) {
		t.Error("offer past its expiry should be expired")
	}

	future := &DispatchOffer{ExpiresAt: now.Add(time.Minute)}
	if future.Expired(now) {
		t.Error("offer before its expiry should not be expired")
	}

	// Zero expiry means the offer never times out.
	open := &DispatchOffer{}
	if open.Expired(now) {
		t.Error("offer with no expiry should never be expired")
	}
}

func TestOfferStatusIsOpen(t *testing.T) {
	if !OfferStatusOffered.IsOpen() {
		t.Error("OFFERED should be open")
	}
	for _, s := range []OfferStatus{OfferStatusAccepted, OfferStatusRejected, OfferStatusTimeout} {
		if s.IsOpen() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
