package model

import (
	"strings"
	"time"
)

// Student represents a single row of the students table.
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStudentRequest is the payload for creating a new student.
type CreateStudentRequest struct {
	Name   string `json:"name" binding:"required,notblank,max=255"`
	Email  string `json:"email" binding:"required,notblank,email,max=255"`
	Phone  string `json:"phone" binding:"required,notblank,max=50"`
	Course string `json:"course" binding:"required,notblank,max=255"`
}

// UpdateStudentRequest is the payload for updating a student.
// Omitted fields keep their stored value.
type UpdateStudentRequest struct {
	Name   *string `json:"name,omitempty" binding:"omitnil,notblank,max=255"`
	Email  *string `json:"email,omitempty" binding:"omitnil,notblank,email,max=255"`
	Phone  *string `json:"phone,omitempty" binding:"omitnil,notblank,max=50"`
	Course *string `json:"course,omitempty" binding:"omitnil,notblank,max=255"`
}

// StudentPatch carries the fields supplied in an update. Nil means "keep".
type StudentPatch struct {
	Name   *string
	Email  *string
	Phone  *string
	Course *string
}

// Normalize trims surrounding whitespace from every field.
func (r *CreateStudentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Course = strings.TrimSpace(r.Course)
}

// Normalize trims surrounding whitespace from every supplied field.
func (r *UpdateStudentRequest) Normalize() {
	r.Name = trimmed(r.Name)
	r.Email = trimmed(r.Email)
	r.Phone = trimmed(r.Phone)
	r.Course = trimmed(r.Course)
}

// Patch converts the request into a StudentPatch with trimmed values.
func (r UpdateStudentRequest) Patch() StudentPatch {
	return StudentPatch{
		Name:   trimmed(r.Name),
		Email:  trimmed(r.Email),
		Phone:  trimmed(r.Phone),
		Course: trimmed(r.Course),
	}
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// Apply overwrites the supplied fields on s.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Course != nil {
		s.Course = *p.Course
	}
}

// NewStudent builds an unsaved Student from a create request.
func (r CreateStudentRequest) NewStudent() *Student {
	return &Student{
		Name:   strings.TrimSpace(r.Name),
		Email:  strings.TrimSpace(r.Email),
		Phone:  strings.TrimSpace(r.Phone),
		Course: strings.TrimSpace(r.Course),
	}
}
