package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/client"
	"github.com/stemsi/student-management/internal/model"
)

// ─── Messages ──────────────────────────────────────────────────────────

const (
	MsgStudentAdded   = "Student added successfully!"
	MsgStudentUpdated = "Student updated successfully!"
	MsgNoStudents     = "No students found"
	MsgGenericFailure = "Something went wrong"
	MsgConfirmDelete  = "Are you sure you want to delete this student?"
	MsgDeleteAborted  = "Delete cancelled"
)

// ErrNothingToCancel is returned by Cancel outside of edit mode.
var ErrNothingToCancel = errors.New("not editing a student")

// shownError marks an error that has already been alerted to the user.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// Shown reports whether err was already alerted by the App.
func Shown(err error) bool {
	var se *shownError
	return errors.As(err, &se)
}

// API is the subset of the HTTP client the view needs.
type API interface {
	List(ctx context.Context) ([]model.Student, error)
	Create(ctx context.Context, req model.CreateStudentRequest) (*model.Student, error)
	Update(ctx context.Context, id int64, req model.UpdateStudentRequest) (*model.Student, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Form is the editable buffer behind the add/update form.
type Form struct {
	Name   string
	Email  string
	Phone  string
	Course string
}

// FormFields lists the form field names in display order.
var FormFields = []string{"name", "email", "phone", "course"}

func (f *Form) field(name string) (*string, bool) {
	switch strings.ToLower(name) {
	case "name":
		return &f.Name, true
	case "email":
		return &f.Email, true
	case "phone":
		return &f.Phone, true
	case "course":
		return &f.Course, true
	}
	return nil, false
}

// App is the student manager view state.
type App struct {
	api    API
	prompt Prompter
	out    io.Writer
	log    zerolog.Logger

	Students []model.Student
	Form     Form
	Mode     Mode
}

// NewApp creates an App in CreateMode. Alerts are written to out.
func NewApp(api API, prompt Prompter, out io.Writer, log zerolog.Logger) *App {
	return &App{
		api:      api,
		prompt:   prompt,
		out:      out,
		log:      log,
		Students: []model.Student{},
		Mode:     CreateMode{},
	}
}

// Load fetches the student list and replaces the table contents.
func (a *App) Load(ctx context.Context) error {
	students, err := a.api.List(ctx)
	if err != nil {
		return a.fail("list", err)
	}
	a.Students = students
	return nil
}

// SetField writes value into the named form field.
func (a *App) SetField(name, value string) error {
	f, ok := a.Form.field(name)
	if !ok {
		return fmt.Errorf("unknown field %q (want one of %s)", name, strings.Join(FormFields, ", "))
	}
	*f = value
	return nil
}

// Submit sends the form buffer as a create or an update depending on Mode.
// On failure the form, mode and list are left untouched.
func (a *App) Submit(ctx context.Context) error {
	switch m := a.Mode.(type) {
	case EditMode:
		if _, err := a.api.Update(ctx, m.ID, a.updateRequest()); err != nil {
			return a.fail("update", err)
		}
		a.reset()
		a.alert(MsgStudentUpdated)
	default:
		if _, err := a.api.Create(ctx, a.createRequest()); err != nil {
			return a.fail("create", err)
		}
		a.reset()
		a.alert(MsgStudentAdded)
	}
	return a.Load(ctx)
}

// Edit copies row id into the form and switches to EditMode.
func (a *App) Edit(id int64) error {
	for _, s := range a.Students {
		if s.ID == id {
			a.Form = Form{Name: s.Name, Email: s.Email, Phone: s.Phone, Course: s.Course}
			a.Mode = EditMode{ID: id}
			return nil
		}
	}
	return fmt.Errorf("no student #%d in the list", id)
}

// Cancel leaves EditMode without sending a request.
func (a *App) Cancel() error {
	if _, ok := a.Mode.(EditMode); !ok {
		return ErrNothingToCancel
	}
	a.reset()
	return nil
}

// Delete asks for confirmation, deletes student id and reloads the list.
func (a *App) Delete(ctx context.Context, id int64) error {
	ok, err := a.prompt.Confirm(MsgConfirmDelete)
	if err != nil {
		return err
	}
	if !ok {
		a.alert(MsgDeleteAborted)
		return nil
	}

	msg, err := a.api.Delete(ctx, id)
	if err != nil {
		return a.fail("delete", err)
	}
	if m, ok := a.Mode.(EditMode); ok && m.ID == id {
		a.reset()
	}
	a.alert(msg)
	return a.Load(ctx)
}

func (a *App) reset() {
	a.Form = Form{}
	a.Mode = CreateMode{}
}

func (a *App) createRequest() model.CreateStudentRequest {
	return model.CreateStudentRequest{
		Name:   a.Form.Name,
		Email:  a.Form.Email,
		Phone:  a.Form.Phone,
		Course: a.Form.Course,
	}
}

func (a *App) updateRequest() model.UpdateStudentRequest {
	f := a.Form
	return model.UpdateStudentRequest{
		Name:   &f.Name,
		Email:  &f.Email,
		Phone:  &f.Phone,
		Course: &f.Course,
	}
}

func (a *App) alert(msg string) {
	fmt.Fprintln(a.out, msg)
}

// fail shows the server-reported message for client errors and a generic
// alert for everything else.
func (a *App) fail(op string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		a.alert(apiErr.Message)
		for _, name := range FormFields {
			if msg, ok := apiErr.Fields[name]; ok {
				fmt.Fprintf(a.out, "  %s: %s\n", name, msg)
			}
		}
		return &shownError{err: err}
	}

	a.log.Error().Err(err).Str("op", op).Msg("Request failed")
	a.alert(MsgGenericFailure)
	return &shownError{err: err}
}
