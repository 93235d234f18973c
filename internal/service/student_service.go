package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/repository"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Exists(ctx context.Context, student *models.Student) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

// CreateStudentRequest is the payload for registering a student. The id is the student number.
type CreateStudentRequest struct {
	StudentID int64  `json:"student_id" form:"student_id" validate:"required,gt=0,lte=2147483647"`
	Name      string `json:"name" form:"name" validate:"required,max=30"`
	Email     string `json:"email" form:"email" validate:"required,email"`
}

// StudentService handles student registration and lookup.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
	pageLimit int
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger, pageLimit int) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageLimit <= 0 {
		pageLimit = DefaultSinglePageLimit
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, pageLimit: pageLimit}
}

// List returns one page of students ordered by id.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) (*models.StudentPage, error) {
	if filter.Offset < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "offset must not be negative")
	}
	filter.Limit = s.pageLimit + 1
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	students, hasMore := overFetch(students, s.pageLimit)
	return &models.StudentPage{Students: students, HasMore: hasMore, Offset: filter.Offset + len(students)}, nil
}

// Create registers a student whose id, name and email are all unused.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	student := &models.Student{ID: req.StudentID, Name: req.Name, Email: req.Email}
	exists, err := s.repo.Exists(ctx, student)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check student")
	}
	if exists {
		return nil, appErrors.ErrAccountExisted
	}

	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.ErrAccountExisted
		}
		return nil, appErrors.Internal(err, "failed to create student")
	}

	s.logger.Info("student created", zap.Int64("student_id", student.ID))
	return student, nil
}
