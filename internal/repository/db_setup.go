package repository

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate membuat atau menyesuaikan tabel users dan tasks.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.SystemLogger.Info("Tables 'users', 'tasks' are ready")
	return nil
}

// CreateAdminUser membuat admin bila email tersebut belum terdaftar.
// passwordHash harus sudah di-hash oleh pemanggil. created=false berarti
// user dengan email itu sudah ada dan tidak diubah.
func CreateAdminUser(ctx context.Context, db *gorm.DB, email, passwordHash string) (created bool, err error) {
	users := NewUserRepository(db)

	if _, err := users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	admin := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		// proses lain bisa saja membuatnya lebih dulu
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("error inserting admin user: %w", err)
	}
	logger.AuditLogger.Info("Admin user created", zap.Int("user_id", admin.ID))
	return true, nil
}

// DropAllTables dipakai test untuk mengosongkan schema.
func DropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Task{}, &models.User{})
}
