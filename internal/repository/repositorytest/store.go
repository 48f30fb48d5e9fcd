// Package repositorytest provides an in-memory repository.StudentStore for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository"
)

// StudentStore mimics the Postgres repository: sequential ids, unique
// emails, store-managed timestamps.
type StudentStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Student

	// Err, when set, is returned by every call.
	Err error
	// Calls counts invocations per method name.
	Calls map[string]int
}

var _ repository.StudentStore = (*StudentStore)(nil)

// NewStudentStore returns an empty store.
func NewStudentStore() *StudentStore {
	return &StudentStore{
		nextID: 1,
		rows:   make(map[int64]model.Student),
		Calls:  make(map[string]int),
	}
}

func (s *StudentStore) enter(method string) error {
	s.Calls[method]++
	return s.Err
}

func (s *StudentStore) List(ctx context.Context) ([]model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("List"); err != nil {
		return nil, err
	}

	out := make([]model.Student, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *StudentStore) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetByID"); err != nil {
		return nil, err
	}

	row, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrStudentNotFound
	}
	return &row, nil
}

func (s *StudentStore) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ExistsByEmail"); err != nil {
		return false, err
	}
	return s.emailTaken(email, excludeID), nil
}

func (s *StudentStore) Create(ctx context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Create"); err != nil {
		return err
	}
	if s.emailTaken(st.Email, 0) {
		return repository.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	st.ID = s.nextID
	st.CreatedAt = now
	st.UpdatedAt = now
	s.nextID++
	s.rows[st.ID] = *st
	return nil
}

func (s *StudentStore) Update(ctx context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Update"); err != nil {
		return err
	}

	existing, ok := s.rows[st.ID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	if s.emailTaken(st.Email, st.ID) {
		return repository.ErrDuplicateEmail
	}

	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = time.Now().UTC()
	s.rows[st.ID] = *st
	return nil
}

func (s *StudentStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Delete"); err != nil {
		return err
	}

	if _, ok := s.rows[id]; !ok {
		return repository.ErrStudentNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len returns the number of stored rows.
func (s *StudentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *StudentStore) emailTaken(email string, excludeID int64) bool {
	for id, row := range s.rows {
		if id != excludeID && row.Email == email {
			return true
		}
	}
	return false
}
