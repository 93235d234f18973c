package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// schema is applied in order; every statement is idempotent.
var schema = []struct {
	name string
	ddl  string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
		user_id     BIGSERIAL PRIMARY KEY,
		username    TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		first_name  TEXT NOT NULL DEFAULT '',
		last_name   TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL UNIQUE,
		role        SMALLINT NOT NULL,
		status      SMALLINT NOT NULL DEFAULT 1,
		create_date BIGINT NOT NULL
	)`},
	{"subjects", `CREATE TABLE IF NOT EXISTS subjects (
		subject_id     BIGSERIAL PRIMARY KEY,
		subject_code   TEXT NOT NULL,
		name           TEXT NOT NULL,
		coordinator_id BIGINT NOT NULL DEFAULT 0,
		create_date    BIGINT NOT NULL,
		status         SMALLINT NOT NULL DEFAULT 1,
		CONSTRAINT subjects_subject_code_key UNIQUE (subject_code)
	)`},
	{"students", `CREATE TABLE IF NOT EXISTS students (
		student_id INTEGER PRIMARY KEY,
		name       VARCHAR(30) NOT NULL UNIQUE,
		email      VARCHAR(254) NOT NULL UNIQUE
	)`},
	{"teams", `CREATE TABLE IF NOT EXISTS teams (
		team_id       SERIAL PRIMARY KEY,
		name          VARCHAR(30) NOT NULL UNIQUE,
		project_name  VARCHAR(30) NOT NULL,
		description   VARCHAR(1000) NOT NULL DEFAULT '',
		supervisor_id BIGINT NOT NULL,
		create_date   BIGINT NOT NULL,
		expired       BIGINT NOT NULL
	)`},
	{"teams_expired_idx", `CREATE INDEX IF NOT EXISTS teams_expired_idx ON teams (expired)`},
	{"team_members", `CREATE TABLE IF NOT EXISTS team_members (
		id         SERIAL PRIMARY KEY,
		team_id    INTEGER NOT NULL,
		student_id INTEGER NOT NULL,
		CONSTRAINT team_members_team_student_key UNIQUE (team_id, student_id)
	)`},
	{"audit_logs", `CREATE TABLE IF NOT EXISTS audit_logs (
		id          UUID PRIMARY KEY,
		user_id     BIGINT,
		action      TEXT NOT NULL,
		resource    TEXT NOT NULL,
		resource_id TEXT,
		new_values  JSONB,
		ip_address  TEXT NOT NULL DEFAULT '',
		user_agent  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	)`},
}

// Migrate creates the tables the API relies on when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, step := range schema {
		if _, err := db.ExecContext(ctx, step.ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", step.name, err)
		}
		logger.Debug("migration applied", zap.String("step", step.name))
	}
	logger.Info("database schema ready", zap.Int("steps", len(schema)))
	return nil
}
