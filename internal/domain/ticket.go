package domain

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

const (
	ticketPrefix  = "JSK"
	ticketMinSeq  = 10000
	ticketSeqSpan = 90000
)

var ticketPattern = regexp.MustCompile(`^JSK-\d{4}-\d{5}$`)

// NewTicketID returns a candidate ticket id for the given creation time.
// Uniqueness is enforced by the store; callers retry on conflict.
func NewTicketID(now time.Time) string {
	return fmt.Sprintf("%s-%d-%05d", ticketPrefix, now.Year(), ticketMinSeq+rand.Intn(ticketSeqSpan))
}

func ValidTicketID(ticketID string) bool {
	return ticketPattern.MatchString(ticketID)
}
