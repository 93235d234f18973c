package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/repository"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

type teamRepository interface {
	List(ctx context.Context, filter models.TeamFilter) ([]models.Team, error)
	FindByID(ctx context.Context, id int64) (*models.Team, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, team *models.Team) error
	AddMember(ctx context.Context, member *models.TeamMember) error
	ListMembers(ctx context.Context, teamID int64) ([]models.Student, error)
}

type supervisorLookup interface {
	FindValidByRole(ctx context.Context, id int64, role models.Role) (*models.User, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

// CreateTeamRequest is the payload for creating a team.
type CreateTeamRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=30"`
	ProjectName  string `json:"project_name" form:"project_name" validate:"required,max=30"`
	Description  string `json:"description" form:"description" validate:"max=1000"`
	SupervisorID int64  `json:"supervisor_id" form:"supervisor_id" validate:"required,gt=0"`
	Expired      int64  `json:"expired" form:"expired" validate:"required,gt=0"`
}

// AddMemberRequest is the payload for adding a student to a team.
type AddMemberRequest struct {
	StudentID int64 `json:"student_id" form:"student_id" validate:"required,gt=0"`
}

// TeamService manages project teams and their membership.
type TeamService struct {
	repo      teamRepository
	users     supervisorLookup
	students  studentLookup
	validator *validator.Validate
	logger    *zap.Logger
	pageLimit int
	now       func() time.Time
}

// NewTeamService constructs a TeamService.
func NewTeamService(repo teamRepository, users supervisorLookup, students studentLookup, validate *validator.Validate, logger *zap.Logger, pageLimit int) *TeamService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageLimit <= 0 {
		pageLimit = DefaultSinglePageLimit
	}
	return &TeamService{
		repo:      repo,
		users:     users,
		students:  students,
		validator: validate,
		logger:    logger,
		pageLimit: pageLimit,
		now:       time.Now,
	}
}

// List returns one page of teams ordered by id.
func (s *TeamService) List(ctx context.Context, filter models.TeamFilter) (*models.TeamPage, error) {
	if filter.Offset < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "offset must not be negative")
	}
	filter.Limit = s.pageLimit + 1
	teams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teams")
	}
	teams, hasMore := overFetch(teams, s.pageLimit)
	return &models.TeamPage{Teams: teams, HasMore: hasMore, Offset: filter.Offset + len(teams)}, nil
}

// Get returns a team with its member students.
func (s *TeamService) Get(ctx context.Context, id int64) (*models.TeamDetail, error) {
	team, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list team members")
	}
	return &models.TeamDetail{Team: *team, Members: members}, nil
}

// Create adds a team supervised by a valid supervisor account.
func (s *TeamService) Create(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	now := s.now()
	if req.Expired <= now.Unix() {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "expired must be in the future")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check team name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrInvalidOp, "team name already used")
	}

	if _, err := s.users.FindValidByRole(ctx, req.SupervisorID, models.RoleSupervisor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOp, "supervisor must be a valid supervisor account")
		}
		return nil, appErrors.Internal(err, "failed to load supervisor")
	}

	team := &models.Team{
		Name:         req.Name,
		ProjectName:  req.ProjectName,
		Description:  strings.TrimSpace(req.Description),
		SupervisorID: req.SupervisorID,
		CreateDate:   now.Unix(),
		Expired:      req.Expired,
	}
	if err := s.repo.Create(ctx, team); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOp, "team name already used")
		}
		return nil, appErrors.Internal(err, "failed to create team")
	}

	s.logger.Info("team created", zap.Int64("team_id", team.ID), zap.String("name", team.Name))
	return team, nil
}

// AddMember links an existing student to the team. A student joins a team at most once.
func (s *TeamService) AddMember(ctx context.Context, teamID int64, req AddMemberRequest) (*models.TeamMember, error) {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	member := &models.TeamMember{TeamID: team.ID, StudentID: req.StudentID}
	if err := s.repo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOp, "student already in team")
		}
		return nil, appErrors.Internal(err, "failed to add team member")
	}
	return member, nil
}

func (s *TeamService) load(ctx context.Context, id int64) (*models.Team, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "team id is required")
	}
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Internal(err, "failed to load team")
	}
	return team, nil
}
