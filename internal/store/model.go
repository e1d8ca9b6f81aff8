package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Row models for the engine snapshot. The ledger is flattened into one
// row per (internship, student) pair.

type InternshipRow struct {
	bun.BaseModel `bun:"table:internships,alias:i"`

	ID             int       `bun:"id,pk"`
	Title          string    `bun:"title,notnull"`
	Description    string    `bun:"description"`
	Level          string    `bun:"level,notnull"`
	PreferredMajor string    `bun:"preferred_major"`
	OpeningDate    time.Time `bun:"opening_date,notnull"`
	ClosingDate    time.Time `bun:"closing_date,notnull"`
	Slots          int       `bun:"slots,notnull"`
	Status         string    `bun:"status,notnull"`
	Visible        bool      `bun:"visible,notnull"`
	PostedBy       string    `bun:"posted_by,notnull"`
}

type ApplicationRow struct {
	bun.BaseModel `bun:"table:applications,alias:a"`

	ID           int    `bun:"id,pk,autoincrement"`
	InternshipID int    `bun:"internship_id,notnull"`
	StudentID    string `bun:"student_id,notnull"`
	Status       string `bun:"status,notnull"`
}

type WithdrawalRequestRow struct {
	bun.BaseModel `bun:"table:withdrawal_requests,alias:w"`

	ID                int    `bun:"id,pk"`
	StudentID         string `bun:"student_id,notnull"`
	InternshipID      int    `bun:"internship_id,notnull"`
	AfterConfirmation bool   `bun:"after_confirmation,notnull"`
	Approved          bool   `bun:"approved,notnull"`
}
