package internship

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SevinYeung429/SC2002/internal/directory"
)

const (
	maxActivePostings     = 5
	maxActiveApplications = 3
	minSlots              = 1
	maxSlots              = 10
)

// StudentDirectory is the slice of the user directory the engine needs:
// student lookup for eligibility checks and the accepted-internship
// marker that enforces one confirmed offer at a time.
type StudentDirectory interface {
	StudentByID(ctx context.Context, id string) (*directory.Student, error)
	SetAcceptedInternship(ctx context.Context, studentID string, internshipID int) error
	ClearAcceptedInternship(ctx context.Context, studentID string) error
}

// EventPublisher receives lifecycle events. Publishing is best-effort;
// a nil publisher disables it.
type EventPublisher interface {
	SendMessage(value interface{}) error
}

// Event is the payload published on lifecycle transitions.
type Event struct {
	Name         string `json:"name"`
	InternshipID int    `json:"internshipId,omitempty"`
	StudentID    string `json:"studentId,omitempty"`
	RequestID    int    `json:"requestId,omitempty"`
}

// Engine owns the internship registry and the withdrawal request queue
// and enforces every lifecycle invariant across them. All operations
// run under one mutex: the capacity checks are read-modify-write
// sequences, so concurrent callers must be serialized.
type Engine struct {
	mu       sync.Mutex
	students StudentDirectory
	events   EventPublisher
	logger   *slog.Logger

	internships map[int]*Internship
	order       []int
	requests    []*WithdrawalRequest

	nextID        int
	nextRequestID int

	now func() time.Time
}

func NewEngine(students StudentDirectory, events EventPublisher, logger *slog.Logger) *Engine {
	return &Engine{
		students:      students,
		events:        events,
		logger:        logger,
		internships:   make(map[int]*Internship),
		nextID:        1,
		nextRequestID: 1,
		now:           time.Now,
	}
}

func (e *Engine) publish(ev Event) {
	if e.events == nil {
		return
	}
	if err := e.events.SendMessage(ev); err != nil {
		e.logger.Warn("failed to publish lifecycle event", "event", ev.Name, "error", err)
	}
}

func (e *Engine) get(id int) (*Internship, error) {
	i, ok := e.internships[id]
	if !ok {
		return nil, fmt.Errorf("%w: internship %d", ErrNotFound, id)
	}
	return i, nil
}

// InternshipByID returns a copy of one posting.
func (e *Engine) InternshipByID(ctx context.Context, id int) (*Internship, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, err := e.get(id)
	if err != nil {
		return nil, err
	}
	return i.clone(), nil
}

// Internships lists every posting in creation order.
func (e *Engine) Internships(ctx context.Context) []*Internship {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Internship, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.internships[id].clone())
	}
	return out
}

// ListByRepresentative is the representative's view of its postings,
// derived by filtering the registry rather than kept as a second list.
func (e *Engine) ListByRepresentative(ctx context.Context, repID string) []*Internship {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*Internship
	for _, id := range e.order {
		if i := e.internships[id]; i.PostedBy == repID {
			out = append(out, i.clone())
		}
	}
	return out
}

// OpenInternships lists the postings a student may apply to today.
func (e *Engine) OpenInternships(ctx context.Context, studentID string) ([]*Internship, error) {
	student, err := e.students.StudentByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	today := e.now()
	var out []*Internship
	for _, id := range e.order {
		if i := e.internships[id]; i.openForApplication(student.Year, today) {
			out = append(out, i.clone())
		}
	}
	return out, nil
}

// ApplicationsByStudent lists every ledger entry for one student across
// the registry, in posting creation order.
func (e *Engine) ApplicationsByStudent(ctx context.Context, studentID string) []StudentApplication {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []StudentApplication
	for _, id := range e.order {
		i := e.internships[id]
		if status, ok := i.Applications[studentID]; ok {
			out = append(out, StudentApplication{
				InternshipID: i.ID,
				Title:        i.Title,
				Level:        i.Level,
				Status:       status,
			})
		}
	}
	return out
}

// countActiveApplications counts applied and offered entries for a
// student system-wide. Caller holds the lock.
func (e *Engine) countActiveApplications(studentID string) int {
	n := 0
	for _, i := range e.internships {
		switch i.Applications[studentID] {
		case ApplicationApplied, ApplicationOffered:
			n++
		}
	}
	return n
}

// Snapshot captures the whole engine state for the persistence
// collaborator.
type Snapshot struct {
	Internships      []*Internship
	Requests         []*WithdrawalRequest
	NextInternshipID int
	NextRequestID    int
}

func (e *Engine) Snapshot(ctx context.Context) *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := &Snapshot{
		NextInternshipID: e.nextID,
		NextRequestID:    e.nextRequestID,
	}
	for _, id := range e.order {
		snap.Internships = append(snap.Internships, e.internships[id].clone())
	}
	for _, req := range e.requests {
		cp := *req
		snap.Requests = append(snap.Requests, &cp)
	}
	return snap
}

// Restore replaces the engine state with a previously captured
// snapshot. Creation order follows ascending ids.
func (e *Engine) Restore(ctx context.Context, snap *Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.internships = make(map[int]*Internship, len(snap.Internships))
	e.order = e.order[:0]
	for _, i := range snap.Internships {
		cp := i.clone()
		if cp.Applications == nil {
			cp.Applications = make(map[string]ApplicationStatus)
		}
		e.internships[cp.ID] = cp
		e.order = append(e.order, cp.ID)
	}
	sort.Ints(e.order)

	e.requests = e.requests[:0]
	for _, req := range snap.Requests {
		cp := *req
		e.requests = append(e.requests, &cp)
	}

	e.nextID = snap.NextInternshipID
	e.nextRequestID = snap.NextRequestID
	for _, id := range e.order {
		if id >= e.nextID {
			e.nextID = id + 1
		}
	}
	for _, req := range e.requests {
		if req.ID >= e.nextRequestID {
			e.nextRequestID = req.ID + 1
		}
	}

	e.logger.Info("engine state restored",
		"internships", len(e.internships),
		"withdrawal_requests", len(e.requests),
	)
}
