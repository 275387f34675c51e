package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from  TicketStatus
		to    TicketStatus
		valid bool
	}{
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusResolved, true},
		{TicketStatusOpen, TicketStatusClosed, true},
		{TicketStatusOpen, TicketStatusCancelled, true},
		{TicketStatusOpen, TicketStatusReopened, false},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusOpen, true},
		{TicketStatusInProgress, TicketStatusReopened, false},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusReopened, true},
		{TicketStatusResolved, TicketStatusInProgress, false},
		{TicketStatusClosed, TicketStatusReopened, true},
		{TicketStatusClosed, TicketStatusInProgress, false},
		{TicketStatusClosed, TicketStatusClosed, false},
		{TicketStatusReopened, TicketStatusInProgress, true},
		{TicketStatusReopened, TicketStatusClosed, true},
		{TicketStatusCancelled, TicketStatusInProgress, false},
		{TicketStatusCancelled, TicketStatusReopened, false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("CanTransition(%s, %s)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestIsCompleted(t *testing.T) {
	completed := map[TicketStatus]bool{
		TicketStatusOpen:       false,
		TicketStatusInProgress: false,
		TicketStatusResolved:   true,
		TicketStatusClosed:     true,
		TicketStatusReopened:   false,
		TicketStatusCancelled:  false,
	}
	for status, want := range completed {
		if got := status.IsCompleted(); got != want {
			t.Fatalf("%s.IsCompleted()=%v, want %v", status, got, want)
		}
	}
}
