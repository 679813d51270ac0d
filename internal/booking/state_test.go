package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestTransition(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Minute
	live := now.Add(30 * time.Second)
	lapsed := now.Add(-time.Second)

	availableSeat := model.Seat{ID: "s1", ShowID: "show1", Status: model.StatusAvailable, Token: "t0"}
	heldByAlice := model.Seat{ID: "s1", ShowID: "show1", Status: model.StatusHeld, HolderID: strPtr("alice"), HoldExpiresAt: timePtr(live), Token: "t0"}
	expiredHold := model.Seat{ID: "s1", ShowID: "show1", Status: model.StatusHeld, HolderID: strPtr("alice"), HoldExpiresAt: timePtr(lapsed), Token: "t0"}
	bookedByAlice := model.Seat{ID: "s1", ShowID: "show1", Status: model.StatusBooked, HolderID: strPtr("alice"), Token: "t0"}

	tests := []struct {
		name       string
		seat       model.Seat
		action     Action
		actor      string
		wantOK     bool
		wantStatus string
		wantHolder string
	}{
		{"claim available seat", availableSeat, ActionClaim, "alice", true, model.StatusHeld, "alice"},
		{"claim live hold of someone else", heldByAlice, ActionClaim, "bob", false, "", ""},
		{"claim own live hold refreshes", heldByAlice, ActionClaim, "alice", true, model.StatusHeld, "alice"},
		{"claim expired hold takes over", expiredHold, ActionClaim, "bob", true, model.StatusHeld, "bob"},
		{"claim booked seat", bookedByAlice, ActionClaim, "carol", false, "", ""},
		{"confirm own live hold", heldByAlice, ActionConfirm, "alice", true, model.StatusBooked, "alice"},
		{"confirm expired hold", expiredHold, ActionConfirm, "alice", false, "", ""},
		{"confirm hold of someone else", heldByAlice, ActionConfirm, "bob", false, "", ""},
		{"confirm already booked seat idempotently", bookedByAlice, ActionConfirm, "alice", true, model.StatusBooked, "alice"},
		{"confirm booked seat of someone else", bookedByAlice, ActionConfirm, "bob", false, "", ""},
		{"release own hold", heldByAlice, ActionRelease, "alice", true, model.StatusAvailable, ""},
		{"release hold of someone else", heldByAlice, ActionRelease, "bob", false, "", ""},
		{"release available seat", availableSeat, ActionRelease, "alice", false, "", ""},
		{"release booked seat", bookedByAlice, ActionRelease, "alice", false, "", ""},
		{"reclaim expired hold", expiredHold, ActionReclaim, "", true, model.StatusAvailable, ""},
		{"reclaim live hold", heldByAlice, ActionReclaim, "", false, "", ""},
		{"reclaim available seat", availableSeat, ActionReclaim, "", false, "", ""},
		{"reclaim booked seat", bookedByAlice, ActionReclaim, "", false, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.seat
			next, ok := Transition(tc.seat, tc.action, tc.actor, now, ttl)
			require.Equal(t, tc.wantOK, ok)
			assert.Equal(t, before, tc.seat, "input seat must never be mutated")
			if !ok {
				return
			}
			assert.Equal(t, tc.wantStatus, next.Status)
			switch tc.wantStatus {
			case model.StatusAvailable:
				assert.Nil(t, next.HolderID)
				assert.Nil(t, next.HoldExpiresAt)
			case model.StatusHeld:
				require.NotNil(t, next.HolderID)
				assert.Equal(t, tc.wantHolder, *next.HolderID)
				require.NotNil(t, next.HoldExpiresAt)
				assert.Equal(t, now.Add(ttl), *next.HoldExpiresAt)
			case model.StatusBooked:
				require.NotNil(t, next.HolderID)
				assert.Equal(t, tc.wantHolder, *next.HolderID)
				assert.Nil(t, next.HoldExpiresAt)
			}
		})
	}
}

func TestTransitionClaimRefreshExtendsExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seat := model.Seat{
		ID:            "s1",
		Status:        model.StatusHeld,
		HolderID:      strPtr("alice"),
		HoldExpiresAt: timePtr(now.Add(5 * time.Second)),
	}
	next, ok := Transition(seat, ActionClaim, "alice", now, time.Minute)
	require.True(t, ok)
	require.NotNil(t, next.HoldExpiresAt)
	assert.Equal(t, now.Add(time.Minute), *next.HoldExpiresAt)
}

func TestTransitionExpiryBoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// A hold expiring exactly now is already expired: takeover succeeds
	// and confirm fails.
	seat := model.Seat{
		ID:            "s1",
		Status:        model.StatusHeld,
		HolderID:      strPtr("alice"),
		HoldExpiresAt: timePtr(now),
	}
	_, ok := Transition(seat, ActionClaim, "bob", now, time.Minute)
	assert.True(t, ok)
	_, ok = Transition(seat, ActionConfirm, "alice", now, time.Minute)
	assert.False(t, ok)
}
