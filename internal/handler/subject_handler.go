package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/response"
)

type subjectService interface {
	Get(ctx context.Context, id int64) (*models.SubjectDetail, error)
	List(ctx context.Context, filter models.SubjectFilter) (*models.SubjectPage, error)
	Create(ctx context.Context, req service.SubjectRequest) (*models.Subject, error)
	Update(ctx context.Context, id int64, req service.SubjectRequest) (*models.Subject, error)
	Delete(ctx context.Context, id int64) error
}

type subjectExporter interface {
	Subjects(ctx context.Context, filter models.SubjectFilter, format string) (*service.ExportFile, error)
}

// SubjectHandler handles subject endpoints.
type SubjectHandler struct {
	service  subjectService
	exporter subjectExporter
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc subjectService, exporter subjectExporter) *SubjectHandler {
	return &SubjectHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary List subjects
// @Description One page of subjects ordered by id. has_more is 1 when another page exists; pass the returned offset to continue.
// @Tags Subjects
// @Produce json
// @Param ids query string false "Comma-separated subject ids"
// @Param code query string false "Subject code substring"
// @Param name query string false "Subject name substring"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	filter, err := subjectFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.Offset, err = offsetParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, page)
}

// Get godoc
// @Summary Get subject by id
// @Tags Subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	id, err := pathID(c, "subject")
	if err != nil {
		response.Error(c, err)
		return
	}
	subject, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, subject)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.SubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.SubjectRequest
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

// Update godoc
// @Summary Replace subject code, name and coordinator
// @Tags Subjects
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Subject ID"
// @Param payload body service.SubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/update [post]
func (h *SubjectHandler) Update(c *gin.Context) {
	id, err := pathID(c, "subject")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubjectRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.service.Update(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}

// Delete godoc
// @Summary Soft-delete subject
// @Tags Subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/delete [post]
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "subject")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}

// Export godoc
// @Summary Export subjects
// @Tags Subjects
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Param ids query string false "Comma-separated subject ids"
// @Param code query string false "Subject code substring"
// @Param name query string false "Subject name substring"
// @Success 200 {file} file
// @Router /subjects/export [get]
func (h *SubjectHandler) Export(c *gin.Context) {
	filter, err := subjectFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Subjects(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func subjectFilter(c *gin.Context) (models.SubjectFilter, error) {
	ids, err := idsParam(c)
	if err != nil {
		return models.SubjectFilter{}, err
	}
	return models.SubjectFilter{
		IDs:  ids,
		Code: param(c, "code"),
		Name: param(c, "name"),
	}, nil
}
