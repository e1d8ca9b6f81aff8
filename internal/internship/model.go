package internship

import (
	"strings"
	"time"
)

// Level is the difficulty of a posting. Students in year 1 or 2 may
// only apply to basic postings.
type Level string

const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel normalizes free-form level input.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelBasic:
		return LevelBasic, true
	case LevelIntermediate:
		return LevelIntermediate, true
	case LevelAdvanced:
		return LevelAdvanced, true
	default:
		return "", false
	}
}

// Status is the posting lifecycle state.
//
// pending -> approved | rejected, approved -> filled, and filled
// reverts to approved when an after-confirmation withdrawal frees the
// last slot.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFilled   Status = "filled"
)

// ApplicationStatus is the per-(internship, student) ledger state.
// Absence from the ledger means the student never applied; once an
// entry exists it blocks any future application for the pair.
type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationOffered   ApplicationStatus = "offered"
	ApplicationConfirmed ApplicationStatus = "confirmed"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Internship is a posting together with its embedded application
// ledger. The engine owns every record; accessors hand out copies.
type Internship struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Level          Level     `json:"level"`
	PreferredMajor string    `json:"preferredMajor"`
	OpeningDate    time.Time `json:"openingDate"`
	ClosingDate    time.Time `json:"closingDate"`
	Slots          int       `json:"slots"`
	Status         Status    `json:"status"`
	Visible        bool      `json:"visible"`
	PostedBy       string    `json:"postedBy"`

	Applications map[string]ApplicationStatus `json:"applications"`
}

func (i *Internship) countByStatus(s ApplicationStatus) int {
	n := 0
	for _, st := range i.Applications {
		if st == s {
			n++
		}
	}
	return n
}

// openForApplication reports whether a student may apply today. The
// window check compares calendar dates, inclusive on both ends.
func (i *Internship) openForApplication(studentYear int, today time.Time) bool {
	if i.Status != StatusApproved || !i.Visible {
		return false
	}
	day := dateOnly(today)
	if day.Before(dateOnly(i.OpeningDate)) || day.After(dateOnly(i.ClosingDate)) {
		return false
	}
	if studentYear <= 2 && i.Level != LevelBasic {
		return false
	}
	return true
}

func (i *Internship) clone() *Internship {
	cp := *i
	cp.Applications = make(map[string]ApplicationStatus, len(i.Applications))
	for k, v := range i.Applications {
		cp.Applications[k] = v
	}
	return &cp
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WithdrawalRequest is a student's pending request to leave an
// application, held in the queue until staff adjudicates it.
// AfterConfirmation records whether the application had already reached
// confirmed when the request was filed; approving such a request frees
// a slot and can revert a filled posting.
type WithdrawalRequest struct {
	ID                int    `json:"id"`
	StudentID         string `json:"studentId"`
	InternshipID      int    `json:"internshipId"`
	AfterConfirmation bool   `json:"afterConfirmation"`
	Approved          bool   `json:"approved"`
}

// StudentApplication is the student-facing view of one ledger entry.
type StudentApplication struct {
	InternshipID int               `json:"internshipId"`
	Title        string            `json:"title"`
	Level        Level             `json:"level"`
	Status       ApplicationStatus `json:"status"`
}
