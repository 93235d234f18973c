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

// DefaultSinglePageLimit is the subject page size when none is configured.
const DefaultSinglePageLimit = 20

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	SetStatus(ctx context.Context, id int64, status models.Status) error
}

type coordinatorRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindValidByRole(ctx context.Context, id int64, role models.Role) (*models.User, error)
	ListValidByIDs(ctx context.Context, ids []int64) ([]models.User, error)
}

// SubjectRequest carries the writable subject fields for create and update.
type SubjectRequest struct {
	Code          string `json:"code" form:"code" validate:"required"`
	Name          string `json:"name" form:"name" validate:"required"`
	CoordinatorID int64  `json:"coordinator_id" form:"coordinator_id" validate:"required,gt=0"`
}

func (r *SubjectRequest) normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
}

// SubjectRosterRow pairs a subject with its resolved coordinator, nil when unavailable.
type SubjectRosterRow struct {
	Subject     models.Subject
	Coordinator *models.CoordinatorInfo
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	users     coordinatorRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	pageLimit int
	now       func() time.Time
}

// NewSubjectService creates a new subject service. pageLimit <= 0 selects DefaultSinglePageLimit.
func NewSubjectService(repo subjectRepository, users coordinatorRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, pageLimit int) *SubjectService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageLimit <= 0 {
		pageLimit = DefaultSinglePageLimit
	}
	return &SubjectService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		pageLimit: pageLimit,
		now:       time.Now,
	}
}

// PageLimit returns the number of subjects returned per list call.
func (s *SubjectService) PageLimit() int {
	return s.pageLimit
}

// Get returns a subject with its coordinator. Supervisors and teams are always empty.
func (s *SubjectService) Get(ctx context.Context, id int64) (*models.SubjectDetail, error) {
	subject, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.SubjectDetail{
		ID:          subject.ID,
		Code:        subject.Code,
		Name:        subject.Name,
		Supervisors: []interface{}{},
		Teams:       []interface{}{},
		Status:      subject.Status,
	}

	if subject.CoordinatorID > 0 {
		coordinator, err := s.users.FindByID(ctx, subject.CoordinatorID)
		switch {
		case err == nil:
			detail.Coordinator = coordinator.CoordinatorInfo()
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coordinator not found")
		default:
			return nil, appErrors.Internal(err, "failed to load coordinator")
		}
	}

	return detail, nil
}

// List returns one page of subjects starting at filter.Offset, ordered by id.
// One extra row is fetched to decide has_more; the returned offset advances by
// the number of subjects actually returned.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) (*models.SubjectPage, error) {
	if filter.Offset < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "offset must not be negative")
	}
	filter.Limit = s.pageLimit + 1

	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	subjects, hasMore := overFetch(subjects, s.pageLimit)

	page := &models.SubjectPage{
		Subjects: []models.SubjectItem{},
		HasMore:  hasMore,
		Offset:   filter.Offset + len(subjects),
	}
	if len(subjects) == 0 {
		return page, nil
	}

	rows, err := s.joinCoordinators(ctx, subjects)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		page.Subjects = append(page.Subjects, models.SubjectItem{
			ID:          row.Subject.ID,
			Code:        row.Subject.Code,
			Coordinator: row.Coordinator,
			Status:      row.Subject.Status,
		})
	}
	return page, nil
}

// Roster returns up to max subjects matching filter joined with their coordinators.
func (s *SubjectService) Roster(ctx context.Context, filter models.SubjectFilter, max int) ([]SubjectRosterRow, error) {
	filter.Offset = 0
	filter.Limit = max
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	if len(subjects) == 0 {
		return []SubjectRosterRow{}, nil
	}
	return s.joinCoordinators(ctx, subjects)
}

// Create adds a subject after checking required fields, code uniqueness and the coordinator role, in that order.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (subject *models.Subject, err error) {
	defer func() { s.metrics.RecordSubjectMutation("create", err) }()

	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	if err := s.checkCode(ctx, req.Code, 0); err != nil {
		return nil, err
	}
	if err := s.checkCoordinator(ctx, req.CoordinatorID); err != nil {
		return nil, err
	}

	subject = &models.Subject{
		Code:          req.Code,
		Name:          req.Name,
		CoordinatorID: req.CoordinatorID,
		CreateDate:    s.now().Unix(),
		Status:        models.StatusValid,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, s.writeError(err, "failed to create subject")
	}

	s.logger.Info("subject created", zap.Int64("subject_id", subject.ID), zap.String("code", subject.Code))
	return subject, nil
}

// Update replaces code, name and coordinator of an existing subject with the create checks applied.
func (s *SubjectService) Update(ctx context.Context, id int64, req SubjectRequest) (subject *models.Subject, err error) {
	defer func() { s.metrics.RecordSubjectMutation("update", err) }()

	subject, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	if req.Code != subject.Code {
		if err := s.checkCode(ctx, req.Code, subject.ID); err != nil {
			return nil, err
		}
	}
	if req.CoordinatorID != subject.CoordinatorID {
		if err := s.checkCoordinator(ctx, req.CoordinatorID); err != nil {
			return nil, err
		}
	}

	subject.Code = req.Code
	subject.Name = req.Name
	subject.CoordinatorID = req.CoordinatorID
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, s.writeError(err, "failed to update subject")
	}
	return subject, nil
}

// Delete marks a subject invalid. The record stays and remains listable.
func (s *SubjectService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.RecordSubjectMutation("delete", err) }()

	subject, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, subject.ID, models.StatusInvalid); err != nil {
		return appErrors.Internal(err, "failed to delete subject")
	}
	return nil
}

func (s *SubjectService) load(ctx context.Context, id int64) (*models.Subject, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "subject id is required")
	}
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Internal(err, "failed to load subject")
	}
	return subject, nil
}

func (s *SubjectService) checkCode(ctx context.Context, code string, excludeID int64) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check subject code")
	}
	if exists {
		return appErrors.ErrSubjectExisted
	}
	return nil
}

func (s *SubjectService) checkCoordinator(ctx context.Context, id int64) error {
	if _, err := s.users.FindValidByRole(ctx, id, models.RoleCoordinator); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidOp, "coordinator must be a valid coordinator account")
		}
		return appErrors.Internal(err, "failed to load coordinator")
	}
	return nil
}

// writeError maps a lost race on the code unique constraint to subject_existed.
func (s *SubjectService) writeError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return appErrors.ErrSubjectExisted
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Internal(err, message)
}

// joinCoordinators batch-loads valid coordinators for subjects. A subject whose
// coordinator is invalid or gone gets a nil coordinator instead of failing the page.
func (s *SubjectService) joinCoordinators(ctx context.Context, subjects []models.Subject) ([]SubjectRosterRow, error) {
	seen := make(map[int64]struct{}, len(subjects))
	ids := make([]int64, 0, len(subjects))
	for _, subject := range subjects {
		if _, ok := seen[subject.CoordinatorID]; ok {
			continue
		}
		seen[subject.CoordinatorID] = struct{}{}
		ids = append(ids, subject.CoordinatorID)
	}

	users, err := s.users.ListValidByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load coordinators")
	}
	coordinators := make(map[int64]*models.CoordinatorInfo, len(users))
	for i := range users {
		coordinators[users[i].ID] = users[i].CoordinatorInfo()
	}

	rows := make([]SubjectRosterRow, 0, len(subjects))
	for _, subject := range subjects {
		coordinator, ok := coordinators[subject.CoordinatorID]
		if !ok {
			s.logger.Warn("coordinator unavailable for subject",
				zap.Int64("subject_id", subject.ID),
				zap.Int64("coordinator_id", subject.CoordinatorID))
		}
		rows = append(rows, SubjectRosterRow{Subject: subject, Coordinator: coordinator})
	}
	return rows, nil
}
