package internship

import "errors"

// Business-rule refusals. Operations report these instead of panicking
// or aborting; callers match with errors.Is and map to transport codes.
var (
	// ErrCapacityExceeded covers the posting cap (5 active per
	// representative), the application cap (3 active per student), the
	// slot range (1-10), and the offer capacity guard.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidState covers transitions the state machine forbids:
	// editing a non-pending posting, reviewing a non-applied
	// application, accepting a non-offered application, double
	// acceptance, applying to a closed posting.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound covers unknown internships, missing ledger entries,
	// and unknown withdrawal requests.
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation covers refusals that protect record
	// integrity, such as deleting a posting whose ledger is non-empty.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrForbidden is returned when a representative operates on a
	// posting owned by someone else.
	ErrForbidden = errors.New("forbidden")
)
