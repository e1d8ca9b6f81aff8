package internship

import (
	"context"
	"fmt"
	"time"
)

// CreateInternshipInput carries the fields of a new posting.
type CreateInternshipInput struct {
	Title          string
	Description    string
	Level          Level
	PreferredMajor string
	OpeningDate    time.Time
	ClosingDate    time.Time
	Slots          int
}

// CreateInternship registers a new posting for a representative. The
// posting starts pending and invisible and gets the next sequential id.
// It is refused when slots fall outside [1,10] or the representative
// already has five active (not filled, not rejected) postings.
func (e *Engine) CreateInternship(ctx context.Context, repID string, in CreateInternshipInput) (*Internship, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Slots < minSlots || in.Slots > maxSlots {
		return nil, fmt.Errorf("%w: slots must be between %d and %d", ErrCapacityExceeded, minSlots, maxSlots)
	}

	active := 0
	for _, i := range e.internships {
		if i.PostedBy == repID && i.Status != StatusFilled && i.Status != StatusRejected {
			active++
		}
	}
	if active >= maxActivePostings {
		return nil, fmt.Errorf("%w: representative %s already has %d active postings", ErrCapacityExceeded, repID, active)
	}

	i := &Internship{
		ID:             e.nextID,
		Title:          in.Title,
		Description:    in.Description,
		Level:          in.Level,
		PreferredMajor: in.PreferredMajor,
		OpeningDate:    in.OpeningDate,
		ClosingDate:    in.ClosingDate,
		Slots:          in.Slots,
		Status:         StatusPending,
		Visible:        false,
		PostedBy:       repID,
		Applications:   make(map[string]ApplicationStatus),
	}
	e.nextID++
	e.internships[i.ID] = i
	e.order = append(e.order, i.ID)

	e.logger.Info("internship created", "id", i.ID, "representative", repID, "title", i.Title)
	e.publish(Event{Name: "internship.created", InternshipID: i.ID})
	return i.clone(), nil
}

// ReviewPosting is the staff decision on a posting. Approval makes it
// visible, rejection hides it. Re-reviewing an already approved or
// rejected posting overwrites the earlier decision; a filled posting is
// refused so a re-approval cannot resurrect its slots.
func (e *Engine) ReviewPosting(ctx context.Context, id int, approve bool) (*Internship, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(id)
	if err != nil {
		return nil, err
	}
	if i.Status == StatusFilled {
		return nil, fmt.Errorf("%w: internship %d is filled", ErrInvalidState, id)
	}

	if approve {
		i.Status = StatusApproved
		i.Visible = true
		e.publish(Event{Name: "internship.approved", InternshipID: id})
	} else {
		i.Status = StatusRejected
		i.Visible = false
		e.publish(Event{Name: "internship.rejected", InternshipID: id})
	}
	e.logger.Info("internship reviewed", "id", id, "approved", approve)
	return i.clone(), nil
}

// ToggleVisibility flips the visibility flag without touching status.
func (e *Engine) ToggleVisibility(ctx context.Context, repID string, id int) (*Internship, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(id)
	if err != nil {
		return nil, err
	}
	if i.PostedBy != repID {
		return nil, fmt.Errorf("%w: internship %d belongs to another representative", ErrForbidden, id)
	}
	i.Visible = !i.Visible
	return i.clone(), nil
}

// UpdateInternshipInput lists editable fields; nil means unchanged.
type UpdateInternshipInput struct {
	Title          *string
	Description    *string
	Level          *Level
	PreferredMajor *string
	OpeningDate    *time.Time
	ClosingDate    *time.Time
	Slots          *int
}

// UpdateInternship edits a posting that is still pending review. Fields
// with invalid values (slots outside [1,10]) are skipped and reported
// in the second return value while the rest of the update applies.
func (e *Engine) UpdateInternship(ctx context.Context, repID string, id int, in UpdateInternshipInput) (*Internship, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(id)
	if err != nil {
		return nil, nil, err
	}
	if i.PostedBy != repID {
		return nil, nil, fmt.Errorf("%w: internship %d belongs to another representative", ErrForbidden, id)
	}
	if i.Status != StatusPending {
		return nil, nil, fmt.Errorf("%w: internship %d is %s, only pending postings can be edited", ErrInvalidState, id, i.Status)
	}

	var skipped []string
	if in.Title != nil {
		i.Title = *in.Title
	}
	if in.Description != nil {
		i.Description = *in.Description
	}
	if in.Level != nil {
		i.Level = *in.Level
	}
	if in.PreferredMajor != nil {
		i.PreferredMajor = *in.PreferredMajor
	}
	if in.OpeningDate != nil {
		i.OpeningDate = *in.OpeningDate
	}
	if in.ClosingDate != nil {
		i.ClosingDate = *in.ClosingDate
	}
	if in.Slots != nil {
		if *in.Slots < minSlots || *in.Slots > maxSlots {
			skipped = append(skipped, "slots")
		} else {
			i.Slots = *in.Slots
		}
	}

	e.logger.Info("internship updated", "id", id, "skipped_fields", skipped)
	return i.clone(), skipped, nil
}

// DeleteInternship removes a posting. It is refused once the ledger
// holds any entry, whatever its status; withdrawn and rejected entries
// still occupy the ledger.
func (e *Engine) DeleteInternship(ctx context.Context, repID string, id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(id)
	if err != nil {
		return err
	}
	if i.PostedBy != repID {
		return fmt.Errorf("%w: internship %d belongs to another representative", ErrForbidden, id)
	}
	if len(i.Applications) > 0 {
		return fmt.Errorf("%w: internship %d has %d applicant records", ErrInvariantViolation, id, len(i.Applications))
	}

	delete(e.internships, id)
	for n, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:n], e.order[n+1:]...)
			break
		}
	}

	e.logger.Info("internship deleted", "id", id)
	e.publish(Event{Name: "internship.deleted", InternshipID: id})
	return nil
}
