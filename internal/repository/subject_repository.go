package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/pkg/database"
)

const subjectColumns = "subject_id, subject_code, name, coordinator_id, create_date, status"

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns up to filter.Limit subjects from filter.Offset ordered by id.
// Status is not filtered, so soft-deleted subjects are included.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	base := "FROM subjects WHERE 1=1"
	var conditions []string
	var args []interface{}

	if len(filter.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("subject_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.IDs))
	}
	if filter.Code != "" {
		conditions = append(conditions, fmt.Sprintf("subject_code LIKE $%d", len(args)+1))
		args = append(args, containsPattern(filter.Code))
	}
	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("name LIKE $%d", len(args)+1))
		args = append(args, containsPattern(filter.Name))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	offset, limit := pageBounds(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT %s %s ORDER BY subject_id ASC LIMIT %d OFFSET %d", subjectColumns, base, limit, offset)

	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id. A missing row yields sql.ErrNoRows.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE subject_id = $1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}

// ExistsByCode checks whether any subject, valid or not, already uses code.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE subject_code = $1"
	args := []interface{}{code}
	if excludeID > 0 {
		query += " AND subject_id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create inserts a subject and stores the assigned id on it.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (subject_code, name, coordinator_id, create_date, status) VALUES ($1, $2, $3, $4, $5) RETURNING subject_id`
	err := r.db.QueryRowxContext(ctx, query, subject.Code, subject.Name, subject.CoordinatorID, subject.CreateDate, subject.Status).
		Scan(&subject.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("create subject: %w", ErrDuplicate)
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	const query = `UPDATE subjects SET subject_code = :subject_code, name = :name, coordinator_id = :coordinator_id WHERE subject_id = :subject_id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("update subject: %w", ErrDuplicate)
		}
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// SetStatus changes the status of a subject; used for soft deletion.
func (r *SubjectRepository) SetStatus(ctx context.Context, id int64, status models.Status) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE subjects SET status = $2 WHERE subject_id = $1`, id, status); err != nil {
		return fmt.Errorf("set subject status: %w", err)
	}
	return nil
}
