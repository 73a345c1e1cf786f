package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}
	for _, from := range BookingStatuses {
		for _, to := range BookingStatuses {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, BookingStatus("archived").IsTerminal())
}

func TestActiveStatuses(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())
}

func TestAllowedTransitionsIsACopy(t *testing.T) {
	next := StatusPending.AllowedTransitions()
	next[0] = StatusCompleted
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	for _, raw := range []string{"archived", "Confirmed", " confirmed ", "CANCELLED", ""} {
		_, err = ParseBookingStatus(raw)
		require.Error(t, err, raw)
		assert.True(t, IsValidation(err), raw)
	}
}

func TestParseContactStatus(t *testing.T) {
	s, err := ParseContactStatus("replied")
	require.NoError(t, err)
	assert.Equal(t, ContactReplied, s)

	for _, raw := range []string{"spam", "Read", " new"} {
		_, err = ParseContactStatus(raw)
		assert.True(t, IsValidation(err), raw)
	}
}

func TestParsePackageKind(t *testing.T) {
	k, ok := ParsePackageKind("Custom Package")
	assert.True(t, ok)
	assert.Equal(t, PackageCustom, k)

	for _, raw := range []string{"Deluxe", "basic", "custom package", "POPULAR", " Advance"} {
		_, ok = ParsePackageKind(raw)
		assert.False(t, ok, raw)
	}
}

func TestDayOfUsesReferenceZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 9th is already the 10th in India.
	ts := time.Date(2030, 5, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2030-05-10", DayOf(ts, ist))
	assert.Equal(t, "2030-05-09", DayOf(ts, time.UTC))
	assert.Equal(t, "2030-05-09", DayOf(ts, nil))
}

func TestDayBounds(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start, end, err := DayBounds("2030-05-10", ist)
	require.NoError(t, err)
	assert.Equal(t, "2030-05-10", DayOf(start, ist))
	assert.Equal(t, "2030-05-10", DayOf(end, ist))
	assert.Equal(t, "2030-05-11", DayOf(end.Add(time.Millisecond), ist))

	_, _, err = DayBounds("10/05/2030", ist)
	assert.Error(t, err)
}

func TestErrorCategories(t *testing.T) {
	wrapped := fmt.Errorf("reserve: %w", ErrDayHeld("2030-05-10"))
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsValidation(wrapped))

	infra := Infra("insert booking", fmt.Errorf("connection refused"))
	assert.True(t, IsInfrastructure(infra))
	assert.Contains(t, infra.Error(), "connection refused")

	// Categorised errors pass through untouched.
	nf := &NotFoundError{Resource: "booking", ID: "b1"}
	assert.Same(t, nf, Infra("find", nf).(*NotFoundError))
	assert.Nil(t, Infra("noop", nil))

	assert.True(t, IsIllegalTransition(&IllegalTransitionError{From: StatusPending, To: StatusCompleted}))
}

func TestTotalPages(t *testing.T) {
	p := BookingPage{Total: 21, Limit: 10}
	assert.Equal(t, 3, p.TotalPages())
	p.Limit = 0
	assert.Equal(t, 0, p.TotalPages())
}
