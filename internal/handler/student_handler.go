package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository"
	"github.com/stemsi/student-management/internal/response"
	"github.com/stemsi/student-management/internal/service"
	"github.com/stemsi/student-management/internal/validator"
)

// MsgStudentDeleted confirms a successful delete.
const MsgStudentDeleted = "Student deleted successfully"

// StudentHandler handles the student resource (CRUD).
type StudentHandler struct {
	studentService *service.StudentService
	log            zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		log:            log.With().Str("component", "student_handler").Logger(),
	}
}

// ListStudents godoc
// GET /api/students
// Lists every student, without pagination.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	response.Success(c, http.StatusOK, students)
}

// CreateStudent godoc
// POST /api/students
// Creates a new student and returns the stored record.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if err := validator.Bind(c, &req); err != nil {
		h.bindError(c, err)
		return
	}

	student := req.NewStudent()
	if err := h.studentService.Create(c.Request.Context(), student); err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, student)
}

// GetStudent godoc
// GET /api/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, student)
}

// UpdateStudent godoc
// PUT /api/students/:id
// Overwrites the supplied fields; omitted fields keep their stored value.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// A missing student is reported before any body validation.
	if _, err := h.studentService.GetByID(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}

	var req model.UpdateStudentRequest
	if err := validator.Bind(c, &req); err != nil {
		h.bindError(c, err)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, student)
}

// DeleteStudent godoc
// DELETE /api/students/:id
// Permanently removes a student.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}

	response.Message(c, http.StatusOK, MsgStudentDeleted)
}

// parseID reads the :id path parameter. No student can own an id that is
// not a positive int64, so such values are reported as a 404.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return 0, false
	}
	return id, true
}

func (h *StudentHandler) bindError(c *gin.Context, err error) {
	if fields, ok := validator.Fields(err); ok {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}
	response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
}

func (h *StudentHandler) serviceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, repository.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, ve.Fields)
	default:
		h.internalError(c, err)
	}
}

func (h *StudentHandler) internalError(c *gin.Context, err error) {
	h.log.Error().
		Err(err).
		Str("request_id", response.RequestID(c)).
		Str("path", c.FullPath()).
		Msg("Request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
