package internship

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 3)

	require.NoError(t, e.Apply(ctx, "U100", i.ID))

	apps := e.ApplicationsByStudent(ctx, "U100")
	require.Len(t, apps, 1)
	assert.Equal(t, i.ID, apps[0].InternshipID)
	assert.Equal(t, ApplicationApplied, apps[0].Status)

	err := e.Apply(ctx, "U100", i.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "one ledger entry per pair")

	err = e.Apply(ctx, "U999", i.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = e.Apply(ctx, "U100", 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyClosedPosting(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// Pending and invisible: not open.
	pending, err := e.CreateInternship(ctx, "rep1", validInput(3))
	require.NoError(t, err)
	assert.ErrorIs(t, e.Apply(ctx, "U100", pending.ID), ErrInvalidState)

	// Approved but hidden: not open.
	hidden := createApproved(t, e, "rep1", 3)
	_, err = e.ToggleVisibility(ctx, "rep1", hidden.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Apply(ctx, "U100", hidden.ID), ErrInvalidState)

	// Outside the date window: not open.
	in := validInput(3)
	in.OpeningDate = testToday.AddDate(0, 0, 1)
	in.ClosingDate = testToday.AddDate(0, 0, 14)
	future, err := e.CreateInternship(ctx, "rep1", in)
	require.NoError(t, err)
	_, err = e.ReviewPosting(ctx, future.ID, true)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Apply(ctx, "U100", future.ID), ErrInvalidState)
}

func TestApplyDateWindowInclusive(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// Closes today at midnight; the calendar-date comparison still
	// counts today as inside the window.
	in := validInput(3)
	in.ClosingDate = time.Date(testToday.Year(), testToday.Month(), testToday.Day(), 0, 0, 0, 0, time.UTC)
	i, err := e.CreateInternship(ctx, "rep1", in)
	require.NoError(t, err)
	_, err = e.ReviewPosting(ctx, i.ID, true)
	require.NoError(t, err)

	assert.NoError(t, e.Apply(ctx, "U100", i.ID))
}

func TestApplyJuniorStudentLevelGate(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	intermediate := createApproved(t, e, "rep1", 3)

	// U300 is year 2: only basic postings.
	err := e.Apply(ctx, "U300", intermediate.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	in := validInput(3)
	in.Level = LevelBasic
	basic, err := e.CreateInternship(ctx, "rep1", in)
	require.NoError(t, err)
	_, err = e.ReviewPosting(ctx, basic.ID, true)
	require.NoError(t, err)

	assert.NoError(t, e.Apply(ctx, "U300", basic.ID))

	open, err := e.OpenInternships(ctx, "U300")
	require.NoError(t, err)
	require.Len(t, open, 1, "junior student only sees basic postings")
	assert.Equal(t, basic.ID, open[0].ID)
}

func TestApplyActiveApplicationCap(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var ids []int
	for n := 0; n < 4; n++ {
		ids = append(ids, createApproved(t, e, "rep1", 3).ID)
	}

	for _, id := range ids[:3] {
		require.NoError(t, e.Apply(ctx, "U100", id))
	}

	err := e.Apply(ctx, "U100", ids[3])
	assert.ErrorIs(t, err, ErrCapacityExceeded, "fourth active application is refused")

	// A rejected application frees a slot in the cap.
	require.NoError(t, e.ReviewApplication(ctx, "rep1", ids[0], "U100", false))
	assert.NoError(t, e.Apply(ctx, "U100", ids[3]))
}

func TestReviewApplication(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 3)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))

	require.NoError(t, e.ReviewApplication(ctx, "rep1", i.ID, "U100", true))
	apps := e.ApplicationsByStudent(ctx, "U100")
	require.Len(t, apps, 1)
	assert.Equal(t, ApplicationOffered, apps[0].Status)

	// Only applied entries can be reviewed.
	err := e.ReviewApplication(ctx, "rep1", i.ID, "U100", true)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = e.ReviewApplication(ctx, "rep1", i.ID, "U200", true)
	assert.ErrorIs(t, err, ErrNotFound)

	err = e.ReviewApplication(ctx, "rep2", i.ID, "U100", true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReviewApplicationOfferCapacity(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 1)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))
	require.NoError(t, e.Apply(ctx, "U200", i.ID))

	require.NoError(t, e.ReviewApplication(ctx, "rep1", i.ID, "U100", true))

	err := e.ReviewApplication(ctx, "rep1", i.ID, "U200", true)
	assert.ErrorIs(t, err, ErrCapacityExceeded, "offered plus confirmed never exceeds slots")

	// Rejecting is always allowed.
	assert.NoError(t, e.ReviewApplication(ctx, "rep1", i.ID, "U200", false))
}

func TestAcceptOffer(t *testing.T) {
	e, users := newTestEngine(t)
	ctx := context.Background()

	i := createApproved(t, e, "rep1", 2)
	require.NoError(t, e.Apply(ctx, "U100", i.ID))
	require.NoError(t, e.ReviewApplication(ctx, "rep1", i.ID, "U100", true))

	require.NoError(t, e.AcceptOffer(ctx, "U100", i.ID))

	apps := e.ApplicationsByStudent(ctx, "U100")
	require.Len(t, apps, 1)
	assert.Equal(t, ApplicationConfirmed, apps[0].Status)

	st, err := users.StudentByID(ctx, "U100")
	require.NoError(t, err)
	assert.Equal(t, i.ID, st.AcceptedInternshipID)

	// One slot still free: posting stays approved.
	got, err := e.InternshipByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
}

func TestAcceptOfferGuards(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	first := createApproved(t, e, "rep1", 2)
	second := createApproved(t, e, "rep1", 2)

	require.NoError(t, e.Apply(ctx, "U100", first.ID))
	require.NoError(t, e.Apply(ctx, "U100", second.ID))
	require.NoError(t, e.ReviewApplication(ctx, "rep1", first.ID, "U100", true))
	require.NoError(t, e.ReviewApplication(ctx, "rep1", second.ID, "U100", true))

	// Only offered entries can be accepted.
	err := e.AcceptOffer(ctx, "U200", first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.AcceptOffer(ctx, "U100", first.ID))

	// A student holding a confirmed internship cannot accept another.
	err = e.AcceptOffer(ctx, "U100", second.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAcceptOfferFillsAndAutoWithdraws(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	target := createApproved(t, e, "rep1", 1)
	other := createApproved(t, e, "rep2", 3)

	require.NoError(t, e.Apply(ctx, "U100", target.ID))
	require.NoError(t, e.Apply(ctx, "U100", other.ID))
	require.NoError(t, e.Apply(ctx, "U200", target.ID))

	require.NoError(t, e.ReviewApplication(ctx, "rep1", target.ID, "U100", true))
	require.NoError(t, e.AcceptOffer(ctx, "U100", target.ID))

	got, err := e.InternshipByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, got.Status, "last slot confirmed fills the posting")

	// The accepting student's other application is withdrawn...
	apps := e.ApplicationsByStudent(ctx, "U100")
	byID := map[int]ApplicationStatus{}
	for _, a := range apps {
		byID[a.InternshipID] = a.Status
	}
	assert.Equal(t, ApplicationConfirmed, byID[target.ID])
	assert.Equal(t, ApplicationWithdrawn, byID[other.ID])

	// ...while the other applicant on the filled posting keeps theirs.
	otherApps := e.ApplicationsByStudent(ctx, "U200")
	require.Len(t, otherApps, 1)
	assert.Equal(t, ApplicationApplied, otherApps[0].Status)
}

// Across every mutation the offer capacity invariant has to hold; this
// walks a mixed sequence and checks it after each step.
func TestOfferCapacityInvariantHeld(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	check := func() {
		t.Helper()
		for _, i := range e.Internships(ctx) {
			held := i.countByStatus(ApplicationOffered) + i.countByStatus(ApplicationConfirmed)
			assert.LessOrEqual(t, held, i.Slots, "internship %d", i.ID)
		}
	}

	i := createApproved(t, e, "rep1", 2)
	for _, s := range []string{"U100", "U200", "U300"} {
		_ = e.Apply(ctx, s, i.ID)
		check()
	}
	_ = e.ReviewApplication(ctx, "rep1", i.ID, "U100", true)
	check()
	_ = e.ReviewApplication(ctx, "rep1", i.ID, "U200", true)
	check()
	_ = e.ReviewApplication(ctx, "rep1", i.ID, "U300", true)
	check()
	_ = e.AcceptOffer(ctx, "U100", i.ID)
	check()
	_ = e.AcceptOffer(ctx, "U200", i.ID)
	check()
}
