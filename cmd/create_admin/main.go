package main

import (
	"context"
	"errors"
	"flag"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/database"
	"github.com/fridgechef/backend/internal/logger"
	"github.com/fridgechef/backend/internal/models"
)

const (
	adminEmail = "admin@fridgechef.com"
	adminName  = "관리자"
)

func main() {
	password := flag.String("password", "", "Password for the admin account (optional)")
	flag.Parse()

	log, err := logger.Init(false)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	admin, created, err := ensureAdmin(context.Background(), db, *password)
	if err != nil {
		log.Fatal("failed to create admin", zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("id", admin.ID.String()),
		zap.String("name", admin.Name),
		zap.String("email", admin.EmailValue()),
	}
	if created {
		log.Info("admin account created", fields...)
	} else {
		log.Info("admin account already exists", fields...)
	}
}

// ensureAdmin returns the admin account, creating it on first run. An
// existing account is left untouched.
func ensureAdmin(ctx context.Context, db *gorm.DB, password string) (*models.User, bool, error) {
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	email := adminEmail
	admin := &models.User{
		Email:   &email,
		Name:    adminName,
		IsAdmin: true,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, false, err
		}
		hashed := string(hash)
		admin.PasswordHash = &hashed
	}

	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
