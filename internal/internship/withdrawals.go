package internship

import (
	"context"
	"fmt"
)

// RequestWithdrawal files a withdrawal request for an existing ledger
// entry. The request records whether the application was already
// confirmed at filing time; that flag decides whether approval later
// frees a slot. A pending request for the same pair blocks a duplicate.
func (e *Engine) RequestWithdrawal(ctx context.Context, studentID string, internshipID int) (*WithdrawalRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.get(internshipID)
	if err != nil {
		return nil, err
	}
	status, ok := i.Applications[studentID]
	if !ok {
		return nil, fmt.Errorf("%w: no application for student %s on internship %d", ErrNotFound, studentID, internshipID)
	}
	for _, req := range e.requests {
		if req.StudentID == studentID && req.InternshipID == internshipID && !req.Approved {
			return nil, fmt.Errorf("%w: withdrawal already requested for internship %d", ErrInvalidState, internshipID)
		}
	}

	req := &WithdrawalRequest{
		ID:                e.nextRequestID,
		StudentID:         studentID,
		InternshipID:      internshipID,
		AfterConfirmation: status == ApplicationConfirmed,
	}
	e.nextRequestID++
	e.requests = append(e.requests, req)

	e.logger.Info("withdrawal requested",
		"request", req.ID, "internship", internshipID, "student", studentID,
		"after_confirmation", req.AfterConfirmation,
	)
	e.publish(Event{Name: "withdrawal.requested", InternshipID: internshipID, StudentID: studentID, RequestID: req.ID})
	cp := *req
	return &cp, nil
}

// AdjudicateWithdrawal is the staff decision on a request. Rejection,
// or a ledger entry that has disappeared, just removes the request.
// Approval marks the entry withdrawn; when the request was filed after
// confirmation it also clears the student's accepted marker and reverts
// a filled posting to approved, leaving visibility as it was.
func (e *Engine) AdjudicateWithdrawal(ctx context.Context, requestID int, approve bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for n, req := range e.requests {
		if req.ID == requestID {
			idx = n
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: withdrawal request %d", ErrNotFound, requestID)
	}
	req := e.requests[idx]

	i, hasPosting := e.internships[req.InternshipID]
	entryExists := false
	if hasPosting {
		_, entryExists = i.Applications[req.StudentID]
	}
	if !approve || !entryExists {
		e.requests = append(e.requests[:idx], e.requests[idx+1:]...)
		e.logger.Info("withdrawal request dismissed", "request", requestID, "approved", false)
		e.publish(Event{Name: "withdrawal.rejected", InternshipID: req.InternshipID, StudentID: req.StudentID, RequestID: requestID})
		return nil
	}

	if req.AfterConfirmation {
		if err := e.students.ClearAcceptedInternship(ctx, req.StudentID); err != nil {
			return err
		}
		i.Applications[req.StudentID] = ApplicationWithdrawn
		if i.Status == StatusFilled {
			i.Status = StatusApproved
		}
	} else {
		i.Applications[req.StudentID] = ApplicationWithdrawn
	}

	req.Approved = true
	e.requests = append(e.requests[:idx], e.requests[idx+1:]...)

	e.logger.Info("withdrawal approved",
		"request", requestID, "internship", req.InternshipID, "student", req.StudentID,
		"after_confirmation", req.AfterConfirmation,
	)
	e.publish(Event{Name: "withdrawal.approved", InternshipID: req.InternshipID, StudentID: req.StudentID, RequestID: requestID})
	return nil
}

// PendingWithdrawals lists unadjudicated requests in insertion order.
func (e *Engine) PendingWithdrawals(ctx context.Context) []*WithdrawalRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*WithdrawalRequest, 0, len(e.requests))
	for _, req := range e.requests {
		if !req.Approved {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out
}
