package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SevinYeung429/SC2002/internal/db"
	"github.com/SevinYeung429/SC2002/internal/internship"
	"github.com/uptrace/bun"
)

// Store persists engine snapshots to Postgres: the initial-data loader
// and final-snapshot saver the engine itself stays ignorant of.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
}

func New(database *bun.DB, logger *slog.Logger) *Store {
	return &Store{db: database, logger: logger}
}

func (s *Store) Migrate(ctx context.Context) error {
	return db.RunMigrations(ctx, s.db,
		(*InternshipRow)(nil),
		(*ApplicationRow)(nil),
		(*WithdrawalRequestRow)(nil),
	)
}

// Save replaces the stored snapshot with the given one in a single
// transaction.
func (s *Store) Save(ctx context.Context, snap *internship.Snapshot) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*ApplicationRow)(nil),
			(*WithdrawalRequestRow)(nil),
			(*InternshipRow)(nil),
		} {
			if _, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
				return fmt.Errorf("clear snapshot tables: %w", err)
			}
		}

		for _, i := range snap.Internships {
			row := &InternshipRow{
				ID:             i.ID,
				Title:          i.Title,
				Description:    i.Description,
				Level:          string(i.Level),
				PreferredMajor: i.PreferredMajor,
				OpeningDate:    i.OpeningDate,
				ClosingDate:    i.ClosingDate,
				Slots:          i.Slots,
				Status:         string(i.Status),
				Visible:        i.Visible,
				PostedBy:       i.PostedBy,
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert internship %d: %w", i.ID, err)
			}

			studentIDs := make([]string, 0, len(i.Applications))
			for studentID := range i.Applications {
				studentIDs = append(studentIDs, studentID)
			}
			sort.Strings(studentIDs)
			for _, studentID := range studentIDs {
				app := &ApplicationRow{
					InternshipID: i.ID,
					StudentID:    studentID,
					Status:       string(i.Applications[studentID]),
				}
				if _, err := tx.NewInsert().Model(app).Exec(ctx); err != nil {
					return fmt.Errorf("insert application for internship %d: %w", i.ID, err)
				}
			}
		}

		for _, req := range snap.Requests {
			row := &WithdrawalRequestRow{
				ID:                req.ID,
				StudentID:         req.StudentID,
				InternshipID:      req.InternshipID,
				AfterConfirmation: req.AfterConfirmation,
				Approved:          req.Approved,
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert withdrawal request %d: %w", req.ID, err)
			}
		}
		return nil
	})
}

// Load rebuilds an engine snapshot from the database.
func (s *Store) Load(ctx context.Context) (*internship.Snapshot, error) {
	var internshipRows []InternshipRow
	if err := s.db.NewSelect().Model(&internshipRows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load internships: %w", err)
	}

	var applicationRows []ApplicationRow
	if err := s.db.NewSelect().Model(&applicationRows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}

	var requestRows []WithdrawalRequestRow
	if err := s.db.NewSelect().Model(&requestRows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load withdrawal requests: %w", err)
	}

	byID := make(map[int]*internship.Internship, len(internshipRows))
	snap := &internship.Snapshot{NextInternshipID: 1, NextRequestID: 1}
	for _, row := range internshipRows {
		i := &internship.Internship{
			ID:             row.ID,
			Title:          row.Title,
			Description:    row.Description,
			Level:          internship.Level(row.Level),
			PreferredMajor: row.PreferredMajor,
			OpeningDate:    row.OpeningDate,
			ClosingDate:    row.ClosingDate,
			Slots:          row.Slots,
			Status:         internship.Status(row.Status),
			Visible:        row.Visible,
			PostedBy:       row.PostedBy,
			Applications:   make(map[string]internship.ApplicationStatus),
		}
		byID[i.ID] = i
		snap.Internships = append(snap.Internships, i)
		if i.ID >= snap.NextInternshipID {
			snap.NextInternshipID = i.ID + 1
		}
	}

	for _, row := range applicationRows {
		i, ok := byID[row.InternshipID]
		if !ok {
			s.logger.Warn("orphan application row skipped", "internship", row.InternshipID, "student", row.StudentID)
			continue
		}
		i.Applications[row.StudentID] = internship.ApplicationStatus(row.Status)
	}

	for _, row := range requestRows {
		snap.Requests = append(snap.Requests, &internship.WithdrawalRequest{
			ID:                row.ID,
			StudentID:         row.StudentID,
			InternshipID:      row.InternshipID,
			AfterConfirmation: row.AfterConfirmation,
			Approved:          row.Approved,
		})
		if row.ID >= snap.NextRequestID {
			snap.NextRequestID = row.ID + 1
		}
	}

	s.logger.Info("snapshot loaded",
		"internships", len(snap.Internships),
		"applications", len(applicationRows),
		"withdrawal_requests", len(snap.Requests),
	)
	return snap, nil
}
