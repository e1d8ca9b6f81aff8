package directory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid id or password")
	ErrNotApproved        = errors.New("account not approved")
	ErrAlreadyExists      = errors.New("user already exists")
)

// Service is the in-memory user directory. It owns all user records;
// callers get value copies and mutate through service methods.
type Service struct {
	mu       sync.RWMutex
	students map[string]*Student
	reps     map[string]*CompanyRepresentative
	staff    map[string]*Staff
}

func NewService() *Service {
	return &Service{
		students: make(map[string]*Student),
		reps:     make(map[string]*CompanyRepresentative),
		staff:    make(map[string]*Staff),
	}
}

func (s *Service) AddStudent(st Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[st.ID] = &st
}

func (s *Service) AddRepresentative(rep CompanyRepresentative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reps[rep.ID] = &rep
}

func (s *Service) AddStaff(st Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[st.ID] = &st
}

func (s *Service) StudentByID(ctx context.Context, id string) (*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Service) RepresentativeByID(ctx context.Context, id string) (*CompanyRepresentative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reps[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *rep
	return &cp, nil
}

func (s *Service) StaffByID(ctx context.Context, id string) (*Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.staff[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *st
	return &cp, nil
}

// AccountByID resolves any user id to its role-tagged account view.
func (s *Service) AccountByID(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.students[id]; ok {
		return &Account{ID: st.ID, Name: st.Name, Role: RoleStudent}, nil
	}
	if rep, ok := s.reps[id]; ok {
		return &Account{ID: rep.ID, Name: rep.Name, Role: RoleRepresentative}, nil
	}
	if st, ok := s.staff[id]; ok {
		return &Account{ID: st.ID, Name: st.Name, Role: RoleStaff}, nil
	}
	return nil, ErrUserNotFound
}

// Authenticate checks credentials and returns the account view.
// Representatives whose account request has not been approved yet are
// refused even with the right password.
func (s *Service) Authenticate(ctx context.Context, id, password string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		hash     string
		account  Account
		approved = true
	)
	switch {
	case s.students[id] != nil:
		st := s.students[id]
		hash = st.PasswordHash
		account = Account{ID: st.ID, Name: st.Name, Role: RoleStudent}
	case s.reps[id] != nil:
		rep := s.reps[id]
		hash = rep.PasswordHash
		approved = rep.Approved
		account = Account{ID: rep.ID, Name: rep.Name, Role: RoleRepresentative}
	case s.staff[id] != nil:
		st := s.staff[id]
		hash = st.PasswordHash
		account = Account{ID: st.ID, Name: st.Name, Role: RoleStaff}
	default:
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !approved {
		return nil, ErrNotApproved
	}
	return &account, nil
}

// RegisterRepresentativeInput carries a company representative account
// request. The account is created unapproved and waits for staff review.
type RegisterRepresentativeInput struct {
	ID          string
	Name        string
	CompanyName string
	Department  string
	Position    string
	Email       string
	Password    string
}

func (s *Service) RegisterRepresentative(ctx context.Context, in RegisterRepresentativeInput) (*CompanyRepresentative, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.students[in.ID] != nil || s.reps[in.ID] != nil || s.staff[in.ID] != nil {
		return nil, ErrAlreadyExists
	}
	rep := &CompanyRepresentative{
		ID:           in.ID,
		Name:         in.Name,
		CompanyName:  in.CompanyName,
		Department:   in.Department,
		Position:     in.Position,
		Email:        in.Email,
		Approved:     false,
		PasswordHash: string(hash),
	}
	s.reps[rep.ID] = rep
	cp := *rep
	return &cp, nil
}

// PendingRepresentatives lists account requests awaiting staff review,
// ordered by id for stable output.
func (s *Service) PendingRepresentatives(ctx context.Context) []*CompanyRepresentative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []*CompanyRepresentative
	for _, rep := range s.reps {
		if !rep.Approved {
			cp := *rep
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending
}

// ReviewRepresentative adjudicates an account request: approval unlocks
// login, rejection removes the account.
func (s *Service) ReviewRepresentative(ctx context.Context, id string, approve bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reps[id]
	if !ok {
		return ErrUserNotFound
	}
	if approve {
		rep.Approved = true
		return nil
	}
	delete(s.reps, id)
	return nil
}

func (s *Service) SetAcceptedInternship(ctx context.Context, studentID string, internshipID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[studentID]
	if !ok {
		return ErrUserNotFound
	}
	st.AcceptedInternshipID = internshipID
	return nil
}

func (s *Service) ClearAcceptedInternship(ctx context.Context, studentID string) error {
	return s.SetAcceptedInternship(ctx, studentID, 0)
}

func (s *Service) Students(ctx context.Context) []*Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Student, 0, len(s.students))
	for _, st := range s.students {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) Representatives(ctx context.Context) []*CompanyRepresentative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*CompanyRepresentative, 0, len(s.reps))
	for _, rep := range s.reps {
		cp := *rep
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) AllStaff(ctx context.Context) []*Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Staff, 0, len(s.staff))
	for _, st := range s.staff {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
