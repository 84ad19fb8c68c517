package queue

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultTicketTTL is how long a verification ticket stays valid for lookup.
const DefaultTicketTTL = 15 * time.Minute

// codeAttempts bounds retry-on-collision before the generator gives up with
// a ConflictError.
const codeAttempts = 25

// Ticket is a short-lived credential letting an unauthenticated customer
// look up their queue position.
type Ticket struct {
	Code      string
	ExpiresAt time.Time
}

// TicketGenerator issues 4-digit verification codes unique among currently
// live (non-expired) entries.
type TicketGenerator struct {
	ttl  time.Duration
	rand func(n int) int
}

// NewTicketGenerator builds a generator with the given TTL. A non-positive
// TTL falls back to DefaultTicketTTL.
func NewTicketGenerator(ttl time.Duration) *TicketGenerator {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketGenerator{ttl: ttl, rand: rand.Intn}
}

// Issue returns a ticket whose code is absent from taken, retrying on
// collision. taken holds the codes of all live entries at the instant of
// admission.
func (g *TicketGenerator) Issue(now time.Time, taken map[string]bool) (Ticket, error) {
	for i := 0; i < codeAttempts; i++ {
		code := fmt.Sprintf("%04d", g.rand(10000))
		if taken[code] {
			continue
		}
		return Ticket{Code: code, ExpiresAt: now.Add(g.ttl)}, nil
	}
	return Ticket{}, &ConflictError{Reason: "could not generate a unique verification code"}
}
