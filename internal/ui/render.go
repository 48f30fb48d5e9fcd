package ui

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Render writes the form header, the form buffer and the student table.
func Render(w io.Writer, a *App) error {
	fmt.Fprintf(w, "== %s ==\n", a.Mode)
	fmt.Fprintf(w, "  name:   %s\n  email:  %s\n  phone:  %s\n  course: %s\n\n",
		a.Form.Name, a.Form.Email, a.Form.Phone, a.Form.Course)
	return RenderTable(w, a)
}

// RenderTable writes the student list as an aligned table.
func RenderTable(w io.Writer, a *App) error {
	if len(a.Students) == 0 {
		_, err := fmt.Fprintln(w, MsgNoStudents)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tCOURSE")
	for _, s := range a.Students {
		marker := ""
		if m, ok := a.Mode.(EditMode); ok && m.ID == s.ID {
			marker = " *"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%s\t%s\t%s\n", s.ID, marker, s.Name, s.Email, s.Phone, s.Course)
	}
	return tw.Flush()
}
