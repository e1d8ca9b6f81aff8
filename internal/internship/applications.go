package internship

import (
	"context"
	"fmt"
)

// Apply records a new application. The posting must be open for the
// student today, the student must not have any ledger entry for it, and
// the student must hold fewer than three active applications
// system-wide.
func (e *Engine) Apply(ctx context.Context, studentID string, internshipID int) error {
	student, err := e.students.StudentByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(internshipID)
	if err != nil {
		return err
	}
	if !i.openForApplication(student.Year, e.now()) {
		return fmt.Errorf("%w: internship %d is not open for application", ErrInvalidState, internshipID)
	}
	if _, ok := i.Applications[studentID]; ok {
		return fmt.Errorf("%w: student %s already has an application for internship %d", ErrInvalidState, studentID, internshipID)
	}
	if e.countActiveApplications(studentID) >= maxActiveApplications {
		return fmt.Errorf("%w: student %s already has %d active applications", ErrCapacityExceeded, studentID, maxActiveApplications)
	}

	i.Applications[studentID] = ApplicationApplied
	e.logger.Info("application submitted", "internship", internshipID, "student", studentID)
	e.publish(Event{Name: "application.submitted", InternshipID: internshipID, StudentID: studentID})
	return nil
}

// ReviewApplication is the representative's decision on an applied
// entry. Approval extends an offer and is guarded by capacity: a
// posting never has more offered plus confirmed entries than slots.
// Rejection always goes through.
func (e *Engine) ReviewApplication(ctx context.Context, repID string, internshipID int, studentID string, approve bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(internshipID)
	if err != nil {
		return err
	}
	if i.PostedBy != repID {
		return fmt.Errorf("%w: internship %d belongs to another representative", ErrForbidden, internshipID)
	}
	status, ok := i.Applications[studentID]
	if !ok {
		return fmt.Errorf("%w: no application for student %s on internship %d", ErrNotFound, studentID, internshipID)
	}
	if status != ApplicationApplied {
		return fmt.Errorf("%w: application is %s, only applied entries can be reviewed", ErrInvalidState, status)
	}

	if approve {
		if i.countByStatus(ApplicationOffered)+i.countByStatus(ApplicationConfirmed) >= i.Slots {
			return fmt.Errorf("%w: internship %d has no slots left to offer", ErrCapacityExceeded, internshipID)
		}
		i.Applications[studentID] = ApplicationOffered
		e.publish(Event{Name: "application.offered", InternshipID: internshipID, StudentID: studentID})
	} else {
		i.Applications[studentID] = ApplicationRejected
		e.publish(Event{Name: "application.rejected", InternshipID: internshipID, StudentID: studentID})
	}
	e.logger.Info("application reviewed", "internship", internshipID, "student", studentID, "approved", approve)
	return nil
}

// AcceptOffer confirms an offered application. A student holding a
// confirmed internship anywhere cannot accept a second one. Once the
// confirmed count reaches the slot count the posting fills and the
// student's other applications across the registry are withdrawn as one
// atomic step with the acceptance.
func (e *Engine) AcceptOffer(ctx context.Context, studentID string, internshipID int) error {
	student, err := e.students.StudentByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(internshipID)
	if err != nil {
		return err
	}
	status, ok := i.Applications[studentID]
	if !ok {
		return fmt.Errorf("%w: no application for student %s on internship %d", ErrNotFound, studentID, internshipID)
	}
	if status != ApplicationOffered {
		return fmt.Errorf("%w: application is %s, only offered entries can be accepted", ErrInvalidState, status)
	}
	if student.AcceptedInternshipID != 0 {
		return fmt.Errorf("%w: student %s already holds accepted internship %d", ErrInvalidState, studentID, student.AcceptedInternshipID)
	}

	i.Applications[studentID] = ApplicationConfirmed
	if err := e.students.SetAcceptedInternship(ctx, studentID, internshipID); err != nil {
		// Roll the ledger entry back so a directory failure cannot
		// leave a confirmed entry without the accepted marker.
		i.Applications[studentID] = ApplicationOffered
		return err
	}

	e.publish(Event{Name: "application.confirmed", InternshipID: internshipID, StudentID: studentID})
	e.logger.Info("offer accepted", "internship", internshipID, "student", studentID)

	if i.countByStatus(ApplicationConfirmed) >= i.Slots {
		i.Status = StatusFilled
		e.autoWithdrawOthers(studentID, internshipID)
		e.publish(Event{Name: "internship.filled", InternshipID: internshipID})
		e.logger.Info("internship filled", "internship", internshipID)
	}
	return nil
}

// autoWithdrawOthers forces every other ledger entry the accepting
// student holds to withdrawn. Only that student's entries are touched;
// other applicants on the filled posting keep their status. Caller
// holds the lock.
func (e *Engine) autoWithdrawOthers(studentID string, acceptedID int) {
	for _, id := range e.order {
		if id == acceptedID {
			continue
		}
		i := e.internships[id]
		if _, ok := i.Applications[studentID]; ok {
			i.Applications[studentID] = ApplicationWithdrawn
			e.publish(Event{Name: "application.auto_withdrawn", InternshipID: id, StudentID: studentID})
		}
	}
}
