package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"luxe-estates.backend/internal/config"
	"luxe-estates.backend/internal/domain/entities"
	domainrepo "luxe-estates.backend/internal/domain/repositories"
	"luxe-estates.backend/internal/infrastructure/repositories"
)

var openAdminRoleDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type adminRoleDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (domainrepo.ProfileRepository, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminRoleDeps() adminRoleDeps {
	return adminRoleDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (domainrepo.ProfileRepository, io.Closer, error) {
			db, err := openAdminRoleDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openAdminSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return repositories.NewProfileRepository(db), sqlDB, nil
		},
		out: os.Stdout,
	}
}

func parseEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("--email is required")
	}
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email: %s", email)
	}
	return email, nil
}

func parseRole(demote bool) entities.Role {
	if demote {
		return entities.RoleUser
	}
	return entities.RoleAdmin
}

func runAdminRole(args []string, deps adminRoleDeps) error {
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.prepare == nil {
		deps.prepare = defaultAdminRoleDeps().prepare
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("admin-role", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "profile email (required)")
	demoteFlag := fs.Bool("demote", false, "revoke admin instead of granting it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email, err := parseEmail(*emailFlag)
	if err != nil {
		return err
	}
	role := parseRole(*demoteFlag)

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	repo, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	profile, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load profile %s: %w", email, err)
	}
	if profile.Role == role {
		_, _ = fmt.Fprintf(deps.out, "profile %s already has role=%s\n", email, role)
		return nil
	}
	if err := repo.UpdateRole(ctx, profile.ID, role); err != nil {
		return fmt.Errorf("failed updating role: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Updated profile role")
	_, _ = fmt.Fprintf(deps.out, "profile_id=%s\n", profile.ID.String())
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", email)
	_, _ = fmt.Fprintf(deps.out, "role=%s\n", role)
	return nil
}

func main() {
	if err := runAdminRole(os.Args[1:], defaultAdminRoleDeps()); err != nil {
		log.Fatal(err)
	}
}
