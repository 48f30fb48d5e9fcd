// Package ui implements the interactive student manager: a single view
// holding the student list, a form buffer and the form mode.
package ui

import "fmt"

// Mode is the form state: CreateMode or EditMode.
type Mode interface {
	isMode()
	fmt.Stringer
}

// CreateMode submits the form as a new student. It is the initial mode.
type CreateMode struct{}

// EditMode submits the form as an update of student ID.
type EditMode struct {
	ID int64
}

func (CreateMode) isMode() {}
func (EditMode) isMode()   {}

func (CreateMode) String() string { return "Add New Student" }
func (m EditMode) String() string { return fmt.Sprintf("Update Student #%d", m.ID) }
