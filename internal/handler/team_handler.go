package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/response"
)

type teamService interface {
	List(ctx context.Context, filter models.TeamFilter) (*models.TeamPage, error)
	Get(ctx context.Context, id int64) (*models.TeamDetail, error)
	Create(ctx context.Context, req service.CreateTeamRequest) (*models.Team, error)
	AddMember(ctx context.Context, teamID int64, req service.AddMemberRequest) (*models.TeamMember, error)
}

// TeamHandler handles team endpoints.
type TeamHandler struct {
	service teamService
}

// NewTeamHandler constructs a team handler.
func NewTeamHandler(svc teamService) *TeamHandler {
	return &TeamHandler{service: svc}
}

// List godoc
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param name query string false "Team name substring"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} response.Envelope
// @Router /teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	offset, err := offsetParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), models.TeamFilter{Name: param(c, "name"), Offset: offset})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, page)
}

// Get godoc
// @Summary Get team with members
// @Tags Teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	id, err := pathID(c, "team")
	if err != nil {
		response.Error(c, err)
		return
	}
	team, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, team)
}

// Create godoc
// @Summary Create team
// @Tags Teams
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.CreateTeamRequest true "Team payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req service.CreateTeamRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	team, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, gin.H{"id": team.ID})
}

// AddMember godoc
// @Summary Add student to team
// @Tags Teams
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Team ID"
// @Param payload body service.AddMemberRequest true "Member payload"
// @Success 200 {object} response.Envelope
// @Router /teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	id, err := pathID(c, "team")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddMemberRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.service.AddMember(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}
