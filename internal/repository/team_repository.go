package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/pkg/database"
)

const teamColumns = "team_id, name, project_name, description, supervisor_id, create_date, expired"

// TeamRepository handles persistence for teams and their members.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository creates a new repository instance.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// List returns teams ordered by id, optionally filtered by name substring.
func (r *TeamRepository) List(ctx context.Context, filter models.TeamFilter) ([]models.Team, error) {
	base := "FROM teams WHERE 1=1"
	var args []interface{}
	if filter.Name != "" {
		base += " AND name LIKE $1"
		args = append(args, containsPattern(filter.Name))
	}
	offset, limit := pageBounds(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT %s %s ORDER BY team_id ASC LIMIT %d OFFSET %d", teamColumns, base, limit, offset)

	teams := []models.Team{}
	if err := r.db.SelectContext(ctx, &teams, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// FindByID returns a team by id. A missing row yields sql.ErrNoRows.
func (r *TeamRepository) FindByID(ctx context.Context, id int64) (*models.Team, error) {
	var team models.Team
	query := fmt.Sprintf("SELECT %s FROM teams WHERE team_id = $1", teamColumns)
	if err := r.db.GetContext(ctx, &team, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &team, nil
}

// ExistsByName checks team name uniqueness.
func (r *TeamRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM teams WHERE name = $1 LIMIT 1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check team name: %w", err)
	}
	return true, nil
}

// Create inserts a team and stores the assigned id on it.
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	const query = `INSERT INTO teams (name, project_name, description, supervisor_id, create_date, expired) VALUES ($1, $2, $3, $4, $5, $6) RETURNING team_id`
	err := r.db.QueryRowxContext(ctx, query, team.Name, team.ProjectName, team.Description, team.SupervisorID, team.CreateDate, team.Expired).
		Scan(&team.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("create team: %w", ErrDuplicate)
		}
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// AddMember links a student to a team.
func (r *TeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	const query = `INSERT INTO team_members (team_id, student_id) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, member.TeamID, member.StudentID).Scan(&member.ID); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("add team member: %w", ErrDuplicate)
		}
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// ListMembers returns the students of a team ordered by student id.
func (r *TeamRepository) ListMembers(ctx context.Context, teamID int64) ([]models.Student, error) {
	const query = `SELECT s.student_id, s.name, s.email FROM team_members m JOIN students s ON s.student_id = m.student_id WHERE m.team_id = $1 ORDER BY s.student_id ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, teamID); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return students, nil
}
