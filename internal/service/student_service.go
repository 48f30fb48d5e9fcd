package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository"
)

// MsgEmailTaken is the field message for a duplicate email.
const MsgEmailTaken = "email has already been taken"

// ValidationError reports field-level failures that are only detectable
// against stored data (e.g. email uniqueness).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func emailTaken() *ValidationError {
	return &ValidationError{Fields: map[string]string{"email": MsgEmailTaken}}
}

// StudentService handles student business logic.
type StudentService struct {
	studentRepo repository.StudentStore
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo repository.StudentStore, log zerolog.Logger) *StudentService {
	return &StudentService{studentRepo: studentRepo, log: log}
}

// List retrieves all students. The result is never nil.
func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// Create inserts a new student after checking email uniqueness.
func (s *StudentService) Create(ctx context.Context, student *model.Student) error {
	taken, err := s.studentRepo.ExistsByEmail(ctx, student.Email, 0)
	if err != nil {
		return err
	}
	if taken {
		return emailTaken()
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		// Lost a race with a concurrent insert of the same email.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return emailTaken()
		}
		return err
	}

	s.log.Info().Int64("student_id", student.ID).Msg("Student created")
	return nil
}

// Update merges the supplied fields into the stored student and persists it.
// Omitted fields keep their stored values.
func (s *StudentService) Update(ctx context.Context, id int64, patch model.StudentPatch) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != student.Email {
		taken, err := s.studentRepo.ExistsByEmail(ctx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, emailTaken()
		}
	}

	patch.Apply(student)

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, emailTaken()
		}
		return nil, err
	}

	s.log.Info().Int64("student_id", id).Msg("Student updated")
	return student, nil
}

// Delete removes a student by ID.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("student_id", id).Msg("Student deleted")
	return nil
}
