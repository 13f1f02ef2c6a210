package repository

import (
	"strings"

	"github.com/noah-isme/campus-records/internal/models"
)

// Tx exposes the store contents to a View or Update callback. Values
// returned from a Tx are copies.
type Tx struct {
	state    *state
	writable bool
	undo     []func(*state)
}

func (tx *Tx) checkWritable() error {
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

func (tx *Tx) journal(inverse func(*state)) {
	tx.undo = append(tx.undo, inverse)
}

// rollback reverts every journaled change, newest first.
func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i](tx.state)
	}
	tx.undo = nil
}

// Student returns the student with id, active or not.
func (tx *Tx) Student(id string) (models.Student, bool) {
	s, ok := tx.state.students[id]
	if !ok {
		return models.Student{}, false
	}
	return s.Clone(), true
}

// StudentByRegNo matches the registration number ignoring case.
func (tx *Tx) StudentByRegNo(regNo string) (models.Student, bool) {
	for _, id := range tx.state.studentOrder {
		if s := tx.state.students[id]; strings.EqualFold(s.RegNo, regNo) {
			return s.Clone(), true
		}
	}
	return models.Student{}, false
}

// Students lists students in insertion order.
func (tx *Tx) Students(keep func(models.Student) bool) []models.Student {
	out := make([]models.Student, 0, len(tx.state.studentOrder))
	for _, id := range tx.state.studentOrder {
		s := tx.state.students[id]
		if keep == nil || keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// InsertStudent adds s. The id and the registration number must be unused,
// including by inactive students.
func (tx *Tx) InsertStudent(s models.Student) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := tx.state.students[s.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := tx.StudentByRegNo(s.RegNo); ok {
		return ErrDuplicate
	}
	n := len(tx.state.studentOrder)
	tx.state.students[s.ID] = s.Clone()
	tx.state.studentOrder = append(tx.state.studentOrder, s.ID)
	tx.journal(func(st *state) {
		delete(st.students, s.ID)
		st.studentOrder = st.studentOrder[:n]
	})
	return nil
}

// PutStudent replaces an existing student's profile. The enrollment view is
// owned by the store and is kept.
func (tx *Tx) PutStudent(s models.Student) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	current, ok := tx.state.students[s.ID]
	if !ok {
		return ErrNotFound
	}
	if other, ok := tx.StudentByRegNo(s.RegNo); ok && other.ID != s.ID {
		return ErrDuplicate
	}
	prev := current.Clone()
	current.Profile = s.Profile
	current.RegNo = s.RegNo
	tx.state.students[s.ID] = current
	tx.journal(func(st *state) { st.students[s.ID] = prev })
	return nil
}

// Course returns the course with code.
func (tx *Tx) Course(code models.CourseCode) (models.Course, bool) {
	c, ok := tx.state.courses[code]
	return c, ok
}

// Courses lists courses in insertion order.
func (tx *Tx) Courses(keep func(models.Course) bool) []models.Course {
	out := make([]models.Course, 0, len(tx.state.courseOrder))
	for _, code := range tx.state.courseOrder {
		c := tx.state.courses[code]
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// InsertCourse adds c unless its code is taken.
func (tx *Tx) InsertCourse(c models.Course) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := tx.state.courses[c.Code]; ok {
		return ErrDuplicate
	}
	n := len(tx.state.courseOrder)
	tx.state.courses[c.Code] = c
	tx.state.courseOrder = append(tx.state.courseOrder, c.Code)
	tx.journal(func(st *state) {
		delete(st.courses, c.Code)
		st.courseOrder = st.courseOrder[:n]
	})
	return nil
}

// PutCourse replaces an existing course.
func (tx *Tx) PutCourse(c models.Course) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	prev, ok := tx.state.courses[c.Code]
	if !ok {
		return ErrNotFound
	}
	tx.state.courses[c.Code] = c
	tx.journal(func(st *state) { st.courses[c.Code] = prev })
	return nil
}

// Instructor returns the instructor with id.
func (tx *Tx) Instructor(id string) (models.Instructor, bool) {
	i, ok := tx.state.instructors[id]
	return i, ok
}

// Instructors lists instructors in insertion order.
func (tx *Tx) Instructors() []models.Instructor {
	out := make([]models.Instructor, 0, len(tx.state.instructorOrder))
	for _, id := range tx.state.instructorOrder {
		out = append(out, tx.state.instructors[id])
	}
	return out
}

// InsertInstructor adds i unless its id is taken.
func (tx *Tx) InsertInstructor(i models.Instructor) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := tx.state.instructors[i.ID]; ok {
		return ErrDuplicate
	}
	n := len(tx.state.instructorOrder)
	tx.state.instructors[i.ID] = i
	tx.state.instructorOrder = append(tx.state.instructorOrder, i.ID)
	tx.journal(func(st *state) {
		delete(st.instructors, i.ID)
		st.instructorOrder = st.instructorOrder[:n]
	})
	return nil
}

// Enrollment returns the enrollment for the pair.
func (tx *Tx) Enrollment(studentID string, code models.CourseCode) (models.Enrollment, bool) {
	idx := tx.enrollmentIndex(models.EnrollmentKey{StudentID: studentID, Course: code})
	if idx < 0 {
		return models.Enrollment{}, false
	}
	return tx.state.enrollments[idx], true
}

func (tx *Tx) enrollmentIndex(key models.EnrollmentKey) int {
	for i, e := range tx.state.enrollments {
		if e.Key() == key {
			return i
		}
	}
	return -1
}

// Enrollments lists the master list in insertion order.
func (tx *Tx) Enrollments(keep func(models.Enrollment) bool) []models.Enrollment {
	out := make([]models.Enrollment, 0, len(tx.state.enrollments))
	for _, e := range tx.state.enrollments {
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// EnrollmentsByStudent follows the student's own enrollment view.
func (tx *Tx) EnrollmentsByStudent(studentID string) []models.Enrollment {
	s, ok := tx.state.students[studentID]
	if !ok {
		return []models.Enrollment{}
	}
	keys := s.EnrollmentKeys()
	out := make([]models.Enrollment, 0, len(keys))
	for _, key := range keys {
		if idx := tx.enrollmentIndex(key); idx >= 0 {
			out = append(out, tx.state.enrollments[idx])
		}
	}
	return out
}

// EnrollmentsByCourse lists enrollments for code in insertion order.
func (tx *Tx) EnrollmentsByCourse(code models.CourseCode) []models.Enrollment {
	return tx.Enrollments(func(e models.Enrollment) bool { return e.CourseCode == code })
}

// AppendEnrollment adds e to the master list and to the student's view.
func (tx *Tx) AppendEnrollment(e models.Enrollment) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	s, ok := tx.state.students[e.StudentID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := tx.state.courses[e.CourseCode]; !ok {
		return ErrNotFound
	}
	if tx.enrollmentIndex(e.Key()) >= 0 {
		return ErrDuplicate
	}
	n := len(tx.state.enrollments)
	prev := s.Clone()
	tx.state.enrollments = append(tx.state.enrollments, e)
	s.AttachEnrollment(e.Key())
	tx.state.students[e.StudentID] = s
	tx.journal(func(st *state) {
		st.enrollments = st.enrollments[:n]
		st.students[e.StudentID] = prev
	})
	return nil
}

// RemoveEnrollment deletes the pair from the master list and the student's view.
func (tx *Tx) RemoveEnrollment(studentID string, code models.CourseCode) (models.Enrollment, error) {
	if err := tx.checkWritable(); err != nil {
		return models.Enrollment{}, err
	}
	key := models.EnrollmentKey{StudentID: studentID, Course: code}
	idx := tx.enrollmentIndex(key)
	if idx < 0 {
		return models.Enrollment{}, ErrNotFound
	}
	removed := tx.state.enrollments[idx]
	before := tx.state.enrollments
	tx.state.enrollments = append(tx.state.enrollments[:idx:idx], tx.state.enrollments[idx+1:]...)
	tx.journal(func(st *state) { st.enrollments = before })
	if s, ok := tx.state.students[studentID]; ok {
		prev := s.Clone()
		s.DetachEnrollment(key)
		tx.state.students[studentID] = s
		tx.journal(func(st *state) { st.students[studentID] = prev })
	}
	return removed, nil
}

// SetGrade records grade on the pair.
func (tx *Tx) SetGrade(studentID string, code models.CourseCode, grade models.Grade) (models.Enrollment, error) {
	if err := tx.checkWritable(); err != nil {
		return models.Enrollment{}, err
	}
	idx := tx.enrollmentIndex(models.EnrollmentKey{StudentID: studentID, Course: code})
	if idx < 0 {
		return models.Enrollment{}, ErrNotFound
	}
	prev := tx.state.enrollments[idx].Grade
	tx.state.enrollments[idx].Grade = grade
	tx.journal(func(st *state) { st.enrollments[idx].Grade = prev })
	return tx.state.enrollments[idx], nil
}

// SemesterCredits sums the current credits of every course the student is
// enrolled in that runs in semester.
func (tx *Tx) SemesterCredits(studentID string, semester models.Semester) int {
	total := 0
	for _, e := range tx.EnrollmentsByStudent(studentID) {
		if c, ok := tx.state.courses[e.CourseCode]; ok && c.Semester == semester {
			total += c.Credits
		}
	}
	return total
}

// Detail enriches e with the student and course it references.
func (tx *Tx) Detail(e models.Enrollment) models.EnrollmentDetail {
	d := models.EnrollmentDetail{Enrollment: e}
	if s, ok := tx.state.students[e.StudentID]; ok {
		d.StudentRegNo = s.RegNo
		d.StudentName = s.FullName
	}
	if c, ok := tx.state.courses[e.CourseCode]; ok {
		d.CourseTitle = c.Title
		d.Credits = c.Credits
		d.Semester = c.Semester
	}
	return d
}

// Details applies Detail to every enrollment.
func (tx *Tx) Details(enrollments []models.Enrollment) []models.EnrollmentDetail {
	out := make([]models.EnrollmentDetail, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, tx.Detail(e))
	}
	return out
}
