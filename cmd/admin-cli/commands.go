package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/repository"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/cache"
	"github.com/noah-isme/teamsp-admin-api/pkg/config"
	"github.com/noah-isme/teamsp-admin-api/pkg/database"
)

type command func(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error

var commands = map[string]command{
	"migrate":  runMigrate,
	"add-user": runAddUser,
	"subjects": runSubjects,
	"token":    runToken,
}

func runMigrate(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	logr, _ := zap.NewDevelopment()
	if err := database.Migrate(ctx, db, logr); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(out, "schema up to date")
	return nil
}

func runAddUser(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "plain password, stored as a bcrypt hash")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email address")
	roleName := fs.String("role", "coordinator", "administrator, supervisor or coordinator")
	if err := fs.Parse(args); err != nil {
		return err
	}

	role, err := parseRole(*roleName)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" || *password == "" {
		return fmt.Errorf("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	user := &models.User{
		Username:   strings.TrimSpace(*username),
		Password:   string(hash),
		FirstName:  *first,
		LastName:   *last,
		Email:      *email,
		Role:       role,
		Status:     models.StatusValid,
		CreateDate: time.Now().Unix(),
	}
	if err := repository.NewUserRepository(db).Create(ctx, user); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "created %s %s with id %d\n", role, user.Username, user.ID)
	return nil
}

func runSubjects(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("subjects", flag.ContinueOnError)
	code := fs.String("code", "", "code substring")
	name := fs.String("name", "", "name substring")
	max := fs.Int("max", cfg.Subjects.ExportMaxRows, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewSubjectService(repository.NewSubjectRepository(db), repository.NewUserRepository(db), nil, nil, nil, cfg.Subjects.SinglePageLimit)
	rows, err := svc.Roster(ctx, models.SubjectFilter{Code: *code, Name: *name}, *max)
	if err != nil {
		return err
	}
	renderSubjects(out, rows)
	return nil
}

func runToken(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	username := fs.String("username", "", "existing login name")
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repository.NewUserRepository(db).FindByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("find user %q: %w", *username, err)
	}

	auth := service.NewAuthService(nil, nil, nil, nil, nil, nil, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})
	token, claims, err := auth.IssueToken(user)
	if err != nil {
		return err
	}

	if cfg.Sessions.Enabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		session := &models.Session{UserID: user.ID, Role: user.Role, UserAgent: "admin-cli", IssuedAt: claims.IssuedAt.Time}
		if err := repository.NewSessionRepository(rdb).Save(ctx, claims.ID, session, cfg.JWT.Expiration); err != nil {
			return err
		}
	}

	return printToken(out, user, token, claims, *asJSON)
}

func printToken(out io.Writer, user *models.User, token string, claims *models.JWTClaims, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_at":   claims.ExpiresAt.Time.Format(time.RFC3339),
			"user_id":      user.ID,
			"role":         user.Role.String(),
		})
	}
	color.New(color.FgCyan).Fprintln(out, "Access token")
	fmt.Fprintf(out, "User:     %s (%d)\n", user.Username, user.ID)
	fmt.Fprintf(out, "Role:     %s\n", user.Role)
	fmt.Fprintf(out, "Expires:  %s\n\n", claims.ExpiresAt.Time.Format(time.RFC3339))
	fmt.Fprintln(out, token)
	return nil
}

func renderSubjects(out io.Writer, rows []service.SubjectRosterRow) {
	if len(rows) == 0 {
		color.New(color.FgYellow).Fprintln(out, "no subjects found")
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Code", "Name", "Coordinator", "Status"})
	for _, row := range rows {
		coordinator := "-"
		if row.Coordinator != nil {
			coordinator = row.Coordinator.Name
		}
		status := "valid"
		if row.Subject.Status != models.StatusValid {
			status = "invalid"
		}
		table.Append([]string{
			strconv.FormatInt(row.Subject.ID, 10),
			row.Subject.Code,
			row.Subject.Name,
			coordinator,
			status,
		})
	}
	table.Render()
}

func parseRole(name string) (models.Role, error) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleSupervisor, models.RoleCoordinator} {
		if strings.EqualFold(name, role.String()) {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}
