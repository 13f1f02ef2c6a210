package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/noah-isme/campus-records/internal/models"
)

var (
	// ErrNotFound is returned when a lookup misses.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("record already exists")
	// ErrReadOnly is returned by mutations attempted inside View.
	ErrReadOnly = errors.New("read-only transaction")
)

type state struct {
	students        map[string]models.Student
	studentOrder    []string
	courses         map[models.CourseCode]models.Course
	courseOrder     []models.CourseCode
	instructors     map[string]models.Instructor
	instructorOrder []string
	enrollments     []models.Enrollment
}

func newState() state {
	return state{
		students:    make(map[string]models.Student),
		courses:     make(map[models.CourseCode]models.Course),
		instructors: make(map[string]models.Instructor),
	}
}

// Store keeps every record in memory. Writers are serialised. Each Update
// mutates the live state in place and journals an inverse for every change;
// when the callback fails or panics the journal is replayed, so a failed
// operation leaves no partial mutation.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// View runs fn with read access.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{state: &s.state})
}

// Update runs fn with write access as a single critical section.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{state: &s.state, writable: true}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}
