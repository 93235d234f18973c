package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) (*models.StudentPage, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
}

// StudentHandler handles student endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param ids query string false "Comma-separated student ids"
// @Param name query string false "Name substring"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	ids, err := idsParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	offset, err := offsetParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), models.StudentFilter{IDs: ids, Name: param(c, "name"), Offset: offset})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, page)
}

// Create godoc
// @Summary Register student
// @Tags Students
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.service.Create(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}
