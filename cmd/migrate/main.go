package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	"github.com/Kunj2411/Lokmanya-ATS/internal/repository"
	"github.com/Kunj2411/Lokmanya-ATS/internal/service"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/config"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/database"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/logger"
)

func main() {
	var (
		email    string
		password string
		fullName string
		role     string
		skipDDL  bool
	)
	flag.StringVar(&email, "email", "", "provision a user with this email after migrating")
	flag.StringVar(&password, "password", "", "password for the provisioned user")
	flag.StringVar(&fullName, "name", "", "full name for the provisioned user")
	flag.StringVar(&role, "role", string(models.RoleFaculty), "role for the provisioned user (admin or faculty)")
	flag.BoolVar(&skipDDL, "skip-schema", false, "only provision the user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if !skipDDL {
		if err := repository.Migrate(ctx, db); err != nil {
			logr.Fatal("migration failed", zap.Error(err))
		}
		logr.Info("schema applied", zap.String("driver", cfg.Database.Driver))
	}

	if email == "" {
		return
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	user, err := auth.Provision(ctx, service.ProvisionUserRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     models.UserRole(role),
	})
	if err != nil {
		logr.Fatal("provision user failed", zap.Error(err))
	}
	logr.Info("user provisioned", zap.String("email", user.Email), zap.String("role", string(user.Role)))
}
