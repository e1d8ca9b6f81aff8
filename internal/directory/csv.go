package directory

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DataHandler loads the initial user population from CSV files and
// writes the combined snapshot back out. Missing input files are not an
// error; an empty directory falls back to demo data so the service is
// usable out of the box.
type DataHandler struct {
	StudentsFile        string
	StaffFile           string
	RepresentativesFile string
	OutputFile          string

	logger *slog.Logger
}

func NewDataHandler(studentsFile, staffFile, repsFile, outputFile string, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		StudentsFile:        studentsFile,
		StaffFile:           staffFile,
		RepresentativesFile: repsFile,
		OutputFile:          outputFile,
		logger:              logger,
	}
}

// Load populates the directory from the CSV files. Every loaded user
// gets the same default password hash; real credential management is
// out of scope.
func (h *DataHandler) Load(ctx context.Context, svc *Service, defaultPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	passwordHash := string(hash)

	loaded := 0
	loaded += h.loadStudents(svc, passwordHash)
	loaded += h.loadStaff(svc, passwordHash)
	loaded += h.loadRepresentatives(svc, passwordHash)

	if loaded == 0 {
		h.logger.Warn("no user CSV files found, seeding demo data")
		seedDemoData(svc, passwordHash)
	} else {
		h.logger.Info("user directory loaded", "users", loaded)
	}
	return nil
}

func (h *DataHandler) loadStudents(svc *Service, passwordHash string) int {
	rows := h.readRows(h.StudentsFile, 5)
	for _, p := range rows {
		year, err := strconv.Atoi(p[3])
		if err != nil {
			h.logger.Warn("skipping student row with bad year", "id", p[0], "year", p[3])
			continue
		}
		svc.AddStudent(Student{
			ID:           p[0],
			Name:         p[1],
			Major:        p[2],
			Year:         year,
			Email:        p[4],
			PasswordHash: passwordHash,
		})
	}
	return len(rows)
}

func (h *DataHandler) loadStaff(svc *Service, passwordHash string) int {
	rows := h.readRows(h.StaffFile, 5)
	for _, p := range rows {
		svc.AddStaff(Staff{
			ID:           p[0],
			Name:         p[1],
			Role:         p[2],
			Department:   p[3],
			Email:        p[4],
			PasswordHash: passwordHash,
		})
	}
	return len(rows)
}

func (h *DataHandler) loadRepresentatives(svc *Service, passwordHash string) int {
	rows := h.readRows(h.RepresentativesFile, 6)
	for _, p := range rows {
		rep := CompanyRepresentative{
			ID:           p[0],
			Name:         p[1],
			CompanyName:  p[2],
			Department:   p[3],
			Position:     p[4],
			Email:        p[5],
			PasswordHash: passwordHash,
		}
		if len(p) > 6 && strings.EqualFold(strings.TrimSpace(p[6]), "approved") {
			rep.Approved = true
		}
		svc.AddRepresentative(rep)
	}
	return len(rows)
}

// readRows reads a CSV file, drops the header, trims fields, and keeps
// rows with at least minFields columns.
func (h *DataHandler) readRows(path string, minFields int) [][]string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		h.logger.Warn("failed to read user CSV", "file", path, "error", err)
		return nil
	}
	if len(records) <= 1 {
		return nil
	}

	var rows [][]string
	for _, rec := range records[1:] {
		if len(rec) < minFields {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, rec)
	}
	return rows
}

// Save writes every user to the output CSV, one row per user with a
// type tag, mirroring the layout the loader accepts per kind.
func (h *DataHandler) Save(ctx context.Context, svc *Service) error {
	if h.OutputFile == "" {
		return nil
	}
	f, err := os.Create(h.OutputFile)
	if err != nil {
		return fmt.Errorf("create user snapshot: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Name", "Email", "Type", "Extra1", "Extra2", "Approved"}); err != nil {
		return err
	}
	for _, st := range svc.Students(ctx) {
		if err := w.Write([]string{st.ID, st.Name, st.Email, "Student", st.Major, fmt.Sprintf("Year %d", st.Year), ""}); err != nil {
			return err
		}
	}
	for _, st := range svc.AllStaff(ctx) {
		if err := w.Write([]string{st.ID, st.Name, st.Email, "Staff", st.Role, st.Department, ""}); err != nil {
			return err
		}
	}
	for _, rep := range svc.Representatives(ctx) {
		approved := "pending"
		if rep.Approved {
			approved = "approved"
		}
		if err := w.Write([]string{rep.ID, rep.Name, rep.Email, "CompanyRep", rep.CompanyName, rep.Department, approved}); err != nil {
			return err
		}
	}
	return nil
}

func seedDemoData(svc *Service, passwordHash string) {
	svc.AddStaff(Staff{
		ID: "staff1", Name: "Default Staff", Role: "Career Coach",
		Department: "Career Center", Email: "staff1@career.com",
		PasswordHash: passwordHash,
	})
	svc.AddStudent(Student{
		ID: "U1234567A", Name: "Default Student", Major: "Computer Science",
		Year: 3, Email: "student@ntu.edu.sg",
		PasswordHash: passwordHash,
	})
	svc.AddRepresentative(CompanyRepresentative{
		ID: "rep001", Name: "Default Rep", CompanyName: "ABC Corp",
		Department: "HR", Position: "Manager", Email: "rep@company.com",
		Approved:     true,
		PasswordHash: passwordHash,
	})
}
