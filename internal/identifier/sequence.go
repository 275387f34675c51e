// Package identifier produces human-readable sequential ticket numbers and
// collision-checked opaque public access codes.
package identifier

import (
	"context"
	"fmt"

	"github.com/atlasdesk/support-service/internal/persistence"
)

const (
	// TicketNumberPrefix prefixes every generated ticket number.
	TicketNumberPrefix = "TCK-"
	ticketNumberWidth  = 6
	counterName        = "ticket_number"
)

// Sequence issues monotonically increasing ticket numbers from a per-tenant
// counter row. The upsert increments and reads in one statement, so numbers
// stay unique under concurrent creation; run it on the transaction that
// inserts the ticket so an aborted creation cannot commit the increment.
type Sequence struct{}

// NewSequence constructs a Sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next reserves the next ticket number on the given handle.
func (s *Sequence) Next(ctx context.Context, q persistence.Querier) (string, error) {
	const query = `
        INSERT INTO ticket_counters (name, value) VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET value = ticket_counters.value + 1
        RETURNING value`

	var value int64
	if err := q.QueryRow(ctx, query, counterName).Scan(&value); err != nil {
		return "", err
	}
	return FormatTicketNumber(value), nil
}

// FormatTicketNumber renders a counter value as a ticket number.
func FormatTicketNumber(value int64) string {
	return fmt.Sprintf("%s%0*d", TicketNumberPrefix, ticketNumberWidth, value)
}
