package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SevinYeung429/SC2002/internal/internship"
	"github.com/SevinYeung429/SC2002/internal/testdb"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pc := testdb.SetupSharedPostgres(t)

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(pc.DB, logger)
	require.NoError(t, s.Migrate(ctx))
	testdb.CleanupTables(t, pc.DB, "applications", "withdrawal_requests", "internships")

	opening := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	closing := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

	snap := &internship.Snapshot{
		Internships: []*internship.Internship{
			{
				ID:             1,
				Title:          "Backend Intern",
				Description:    "Build services",
				Level:          internship.LevelIntermediate,
				PreferredMajor: "CS",
				OpeningDate:    opening,
				ClosingDate:    closing,
				Slots:          2,
				Status:         internship.StatusApproved,
				Visible:        true,
				PostedBy:       "rep1",
				Applications: map[string]internship.ApplicationStatus{
					"U100": internship.ApplicationConfirmed,
					"U200": internship.ApplicationApplied,
				},
			},
			{
				ID:           3,
				Title:        "Data Intern",
				Level:        internship.LevelBasic,
				OpeningDate:  opening,
				ClosingDate:  closing,
				Slots:        1,
				Status:       internship.StatusPending,
				PostedBy:     "rep2",
				Applications: map[string]internship.ApplicationStatus{},
			},
		},
		Requests: []*internship.WithdrawalRequest{
			{ID: 5, StudentID: "U100", InternshipID: 1, AfterConfirmation: true},
		},
		NextInternshipID: 4,
		NextRequestID:    6,
	}

	require.NoError(t, s.Save(ctx, snap))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Internships, 2)
	first := loaded.Internships[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Backend Intern", first.Title)
	assert.Equal(t, internship.LevelIntermediate, first.Level)
	assert.Equal(t, internship.StatusApproved, first.Status)
	assert.True(t, first.Visible)
	assert.True(t, first.OpeningDate.Equal(opening))
	assert.True(t, first.ClosingDate.Equal(closing))
	assert.Equal(t, internship.ApplicationConfirmed, first.Applications["U100"])
	assert.Equal(t, internship.ApplicationApplied, first.Applications["U200"])

	second := loaded.Internships[1]
	assert.Equal(t, 3, second.ID)
	assert.Empty(t, second.Applications)

	require.Len(t, loaded.Requests, 1)
	assert.Equal(t, 5, loaded.Requests[0].ID)
	assert.True(t, loaded.Requests[0].AfterConfirmation)

	// Id sequences resume past the highest stored id.
	assert.Equal(t, 4, loaded.NextInternshipID)
	assert.Equal(t, 6, loaded.NextRequestID)
}

func TestStoreSaveReplacesPreviousSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pc := testdb.SetupSharedPostgres(t)

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(pc.DB, logger)
	require.NoError(t, s.Migrate(ctx))
	testdb.CleanupTables(t, pc.DB, "applications", "withdrawal_requests", "internships")

	opening := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	closing := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	posting := func(id int) *internship.Internship {
		return &internship.Internship{
			ID: id, Title: "Intern", Level: internship.LevelBasic,
			OpeningDate: opening, ClosingDate: closing, Slots: 1,
			Status: internship.StatusPending, PostedBy: "rep1",
			Applications: map[string]internship.ApplicationStatus{},
		}
	}

	require.NoError(t, s.Save(ctx, &internship.Snapshot{
		Internships:      []*internship.Internship{posting(1), posting(2)},
		NextInternshipID: 3,
		NextRequestID:    1,
	}))
	require.NoError(t, s.Save(ctx, &internship.Snapshot{
		Internships:      []*internship.Internship{posting(7)},
		NextInternshipID: 8,
		NextRequestID:    1,
	}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Internships, 1)
	assert.Equal(t, 7, loaded.Internships[0].ID)
	assert.Equal(t, 8, loaded.NextInternshipID)
}
