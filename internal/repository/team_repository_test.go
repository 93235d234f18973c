package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
)

func TestTeamCreateAndMembers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectQuery("INSERT INTO teams").
		WithArgs("Red", "Compiler", "", int64(4), int64(100), int64(200)).
		WillReturnRows(sqlmock.NewRows([]string{"team_id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO team_members").
		WithArgs(int64(11), int64(900)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM team_members m JOIN students s ON s.student_id = m.student_id WHERE m.team_id = $1")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "name", "email"}).AddRow(900, "Lin", "lin@x.test"))

	team := &models.Team{Name: "Red", ProjectName: "Compiler", SupervisorID: 4, CreateDate: 100, Expired: 200}
	require.NoError(t, repo.Create(context.Background(), team))
	assert.Equal(t, int64(11), team.ID)

	require.NoError(t, repo.AddMember(context.Background(), &models.TeamMember{TeamID: 11, StudentID: 900}))

	members, err := repo.ListMembers(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Lin", members[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamAddMemberDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectQuery("INSERT INTO team_members").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.AddMember(context.Background(), &models.TeamMember{TeamID: 1, StudentID: 2})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestStudentListAndExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, name, email FROM students WHERE 1=1 AND name LIKE $1 ORDER BY student_id ASC LIMIT 3 OFFSET 0")).
		WithArgs("%Li%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "name", "email"}).AddRow(900, "Lin", "lin@x.test"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_id = $1 OR name = $2 OR LOWER(email) = LOWER($3) LIMIT 1")).
		WithArgs(int64(900), "Lin", "LIN@x.test").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	students, err := repo.List(context.Background(), models.StudentFilter{Name: "Li", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, students, 1)

	exists, err := repo.Exists(context.Background(), &models.Student{ID: 900, Name: "Lin", Email: "LIN@x.test"})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.AuditActionSubjectCreate, "subject", sqlmock.AnyArg(), `{"status":200}`, "127.0.0.1", "test", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := int64(1)
	entry := &models.AuditLog{UserID: &userID, Action: models.AuditActionSubjectCreate, Resource: "subject", NewValues: []byte(`{"status":200}`), IPAddress: "127.0.0.1", UserAgent: "test"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
