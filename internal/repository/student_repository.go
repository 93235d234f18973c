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

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students ordered by id.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var conditions []string
	var args []interface{}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("student_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.IDs))
	}
	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("name LIKE $%d", len(args)+1))
		args = append(args, containsPattern(filter.Name))
	}

	base := "FROM students WHERE 1=1"
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	offset, limit := pageBounds(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT student_id, name, email %s ORDER BY student_id ASC LIMIT %d OFFSET %d", base, limit, offset)

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID returns a student by id. A missing row yields sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, `SELECT student_id, name, email FROM students WHERE student_id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Exists reports whether the id, name or email is already taken.
func (r *StudentRepository) Exists(ctx context.Context, student *models.Student) (bool, error) {
	const query = `SELECT 1 FROM students WHERE student_id = $1 OR name = $2 OR LOWER(email) = LOWER($3) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, student.ID, student.Name, student.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student: %w", err)
	}
	return true, nil
}

// Create persists a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (student_id, name, email) VALUES (:student_id, :name, :email)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("create student: %w", ErrDuplicate)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
