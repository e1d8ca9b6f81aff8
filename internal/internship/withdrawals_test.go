package internship

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWithdrawal(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 3)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))

	req, err := e.RequestWithdrawal(ctx, "U100", i.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, req.ID)
	assert.False(t, req.AfterConfirmation, "applied entry was not confirmed at filing time")

	// A pending request blocks a duplicate for the same pair.
	_, err = e.RequestWithdrawal(ctx, "U100", i.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// No ledger entry, no request.
	_, err = e.RequestWithdrawal(ctx, "U200", i.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.RequestWithdrawal(ctx, "U100", 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestWithdrawalAfterConfirmation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 3)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))
	require.NoError(t, e.ReviewApplication(ctx, "rep1", i.ID, "U100", true))
	require.NoError(t, e.AcceptOffer(ctx, "U100", i.ID))

	req, err := e.RequestWithdrawal(ctx, "U100", i.ID)
	require.NoError(t, err)
	assert.True(t, req.AfterConfirmation)
}

func TestAdjudicateWithdrawalReject(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 3)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))
	req, err := e.RequestWithdrawal(ctx, "U100", i.ID)
	require.NoError(t, err)

	require.NoError(t, e.AdjudicateWithdrawal(ctx, req.ID, false))

	// Rejection only removes the request; the application is untouched.
	apps := e.ApplicationsByStudent(ctx, "U100")
	require.Len(t, apps, 1)
	assert.Equal(t, ApplicationApplied, apps[0].Status)
	assert.Empty(t, e.PendingWithdrawals(ctx))

	// The student may file again after a rejection.
	_, err = e.RequestWithdrawal(ctx, "U100", i.ID)
	assert.NoError(t, err)

	err = e.AdjudicateWithdrawal(ctx, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjudicateWithdrawalApprove(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 3)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))
	req, err := e.RequestWithdrawal(ctx, "U100", i.ID)
	require.NoError(t, err)

	require.NoError(t, e.AdjudicateWithdrawal(ctx, req.ID, true))

	apps := e.ApplicationsByStudent(ctx, "U100")
	require.Len(t, apps, 1)
	assert.Equal(t, ApplicationWithdrawn, apps[0].Status)
	assert.Empty(t, e.PendingWithdrawals(ctx))

	// Withdrawn is terminal for the pair: no re-application.
	err = e.Apply(ctx, "U100", i.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAdjudicateWithdrawalAfterConfirmationRevertsFilled(t *testing.T) {
	e, users := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 1)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))
	require.NoError(t, e.ReviewApplication(ctx, "rep1", i.ID, "U100", true))
	require.NoError(t, e.AcceptOffer(ctx, "U100", i.ID))

	got, err := e.InternshipByID(ctx, i.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFilled, got.Status)

	req, err := e.RequestWithdrawal(ctx, "U100", i.ID)
	require.NoError(t, err)
	require.True(t, req.AfterConfirmation)

	require.NoError(t, e.AdjudicateWithdrawal(ctx, req.ID, true))

	got, err = e.InternshipByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status, "freed slot reverts filled to approved")
	assert.True(t, got.Visible, "revert keeps visibility as it was")
	assert.Equal(t, ApplicationWithdrawn, got.Applications["U100"])

	st, err := users.StudentByID(ctx, "U100")
	require.NoError(t, err)
	assert.Zero(t, st.AcceptedInternshipID, "accepted marker cleared")

	// The student can now accept an offer elsewhere.
	other := createApproved(t, e, "rep2", 2)
	require.NoError(t, e.Apply(ctx, "U100", other.ID))
	require.NoError(t, e.ReviewApplication(ctx, "rep2", other.ID, "U100", true))
	assert.NoError(t, e.AcceptOffer(ctx, "U100", other.ID))
}

func TestAdjudicateWithdrawalVanishedEntry(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	target := createApproved(t, e, "rep1", 1)
	other := createApproved(t, e, "rep2", 3)

	require.NoError(t, e.Apply(ctx, "U100", target.ID))
	require.NoError(t, e.Apply(ctx, "U100", other.ID))

	// Request withdrawal from other, then accepting target auto-
	// withdraws the same entry before staff gets to the request.
	req, err := e.RequestWithdrawal(ctx, "U100", other.ID)
	require.NoError(t, err)

	require.NoError(t, e.ReviewApplication(ctx, "rep1", target.ID, "U100", true))
	require.NoError(t, e.AcceptOffer(ctx, "U100", target.ID))

	// Approval of the stale request is a no-op beyond dequeueing.
	require.NoError(t, e.AdjudicateWithdrawal(ctx, req.ID, true))
	assert.Empty(t, e.PendingWithdrawals(ctx))

	got, err := e.InternshipByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, ApplicationWithdrawn, got.Applications["U100"])
}

func TestPendingWithdrawalsOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	first := createApproved(t, e, "rep1", 3)
	second := createApproved(t, e, "rep2", 3)

	require.NoError(t, e.Apply(ctx, "U100", first.ID))
	require.NoError(t, e.Apply(ctx, "U200", second.ID))

	a, err := e.RequestWithdrawal(ctx, "U100", first.ID)
	require.NoError(t, err)
	b, err := e.RequestWithdrawal(ctx, "U200", second.ID)
	require.NoError(t, err)

	pending := e.PendingWithdrawals(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, a.ID, pending[0].ID, "requests come back in filing order")
	assert.Equal(t, b.ID, pending[1].ID)
}
