package models

import (
	"testing"
	"time"
)

func TestQuoteExpired(t *testing.T) {
	open := &PriceQuote{ValidUntil: time.Now().Add(24 * time.Hour)}
	if open.Expired() {
		t.Error("quote valid for a day reported expired")
	}

	closed := &PriceQuote{ValidUntil: time.Now().Add(-time.Second)}
	if !closed.Expired() {
		t.Error("quote past validUntil not reported expired")
	}
}
