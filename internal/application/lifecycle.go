package application

import (
	"context"
	"time"
)

// DeriveStatus computes the party status implied by the wall clock. Manual terminal
// states absorb: a CANCELLED or COMPLETED party is never resurrected. Otherwise the
// status follows the half-open interval [Start, End).
func DeriveStatus(party Party, now time.Time) PartyStatus {
	if party.Status.Terminal() {
		return party.Status
	}
	if !now.Before(party.End) {
		return StatusCompleted
	}
	if !now.Before(party.Start) {
		return StatusInProgress
	}
	return StatusScheduled
}

// refreshStatus re-derives the party status and persists it when it changed. Callers
// must never trust a stored status without refreshing first. The party is updated in
// place so callers observe the derived value.
func refreshStatus(ctx context.Context, repo PartyRepository, party *Party, now time.Time) error {
	derived := DeriveStatus(*party, now)
	if derived == party.Status {
		return nil
	}
	party.Status = derived
	party.UpdatedAt = now
	return mapRepoError(repo.UpdateParty(ctx, *party))
}
