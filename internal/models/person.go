package models

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// PersonKind distinguishes the person variants.
type PersonKind string

const (
	PersonKindStudent    PersonKind = "STUDENT"
	PersonKindInstructor PersonKind = "INSTRUCTOR"
)

// Person is implemented by Student and Instructor.
type Person interface {
	Identity() Profile
	Kind() PersonKind
	Describe() string
}

// Profile holds the fields every person carries.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func newProfile(id, fullName, email string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, invalid("id", id, "is required")
	}
	p := Profile{ID: id, Active: true, CreatedAt: time.Now()}
	if err := p.setFullName(fullName); err != nil {
		return Profile{}, err
	}
	if err := p.setEmail(email); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p *Profile) setFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("full name", name, "is required")
	}
	p.FullName = name
	return nil
}

func (p *Profile) setEmail(email string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return invalid("email", email, "is not a valid email address")
	}
	p.Email = email
	return nil
}

// ValidEmail applies the loose local@domain check used for all people.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Rename replaces the full name.
func (p *Profile) Rename(name string) error { return p.setFullName(name) }

// ChangeEmail replaces the email address.
func (p *Profile) ChangeEmail(email string) error { return p.setEmail(email) }

func statusLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}
