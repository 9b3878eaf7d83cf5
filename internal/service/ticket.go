package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	ticketAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ticketRandLength = 6
)

// TicketGenerator issues PREFIX-YYYYMMDD-RANDOM6 identifiers
type TicketGenerator struct {
	prefix string
	loc    *time.Location
	now    func() time.Time
	random io.Reader
}

// NewTicketGenerator creates a generator whose date part is taken in loc
func NewTicketGenerator(prefix string, loc *time.Location) *TicketGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &TicketGenerator{
		prefix: prefix,
		loc:    loc,
		now:    time.Now,
		random: rand.Reader,
	}
}

// Next returns a fresh ticket. Tickets are never deduplicated.
func (g *TicketGenerator) Next() (string, error) {
	max := big.NewInt(int64(len(ticketAlphabet)))
	suffix := make([]byte, ticketRandLength)
	for i := range suffix {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("generate ticket: %w", err)
		}
		suffix[i] = ticketAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", g.prefix, g.now().In(g.loc).Format("20060102"), suffix), nil
}
