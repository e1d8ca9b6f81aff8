package directory

// Role identifies what a user is allowed to do. Menu routing in the
// original console app dispatched on the concrete user type; here the
// role travels with the account instead.
type Role string

const (
	RoleStudent        Role = "student"
	RoleRepresentative Role = "representative"
	RoleStaff          Role = "staff"
)

// Student is a registered student. AcceptedInternshipID is 0 while the
// student holds no confirmed offer; internship ids start at 1.
type Student struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Major                string `json:"major"`
	Year                 int    `json:"year"`
	Email                string `json:"email"`
	AcceptedInternshipID int    `json:"acceptedInternshipId"`

	PasswordHash string `json:"-"`
}

// CompanyRepresentative posts internships once a staff member has
// approved the account. Unapproved representatives cannot log in.
type CompanyRepresentative struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	Email       string `json:"email"`
	Approved    bool   `json:"approved"`

	PasswordHash string `json:"-"`
}

// Staff is a career center staff member.
type Staff struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Email      string `json:"email"`

	PasswordHash string `json:"-"`
}

// Account is the polymorphic view of a user returned by lookups that do
// not care which kind of user they found.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
