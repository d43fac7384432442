package config

import (
	"context"
	"reflect"
	"strings"

	"task-manager/configs"
	"task-manager/internal/auth"
	"task-manager/internal/repository"
	"task-manager/internal/service"
	"task-manager/internal/websocket"
	"task-manager/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies adalah semua komponen yang dipakai route. Dibuat sekali di
// main (atau di test) dan diteruskan secara eksplisit; tidak ada global.
type Dependencies struct {
	Config   configs.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Validate *validator.Validate
	Users    *repository.UserRepository
	Auth     *auth.Authenticator
	Tasks    *service.TaskService
	Hub      *websocket.Hub
}

// NewDependencies merakit dependency. redisClient boleh nil: cache task dan
// denylist token lalu tidak dipakai.
func NewDependencies(cfg configs.Config, db *gorm.DB, redisClient *redis.Client, authOpts ...auth.Option) *Dependencies {
	users := repository.NewUserRepository(db)

	var tasks repository.TaskStore = repository.NewTaskRepository(db)
	var opts []auth.Option
	if redisClient != nil {
		tasks = repository.NewCachedTaskRepository(tasks, redisClient, cfg.TaskCacheTTL)
		opts = append(opts, auth.WithDenylist(auth.NewRedisDenylist(redisClient)))
	}
	opts = append(opts, authOpts...)

	authn := auth.New(users, auth.Config{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, opts...)

	hub := websocket.NewHub()

	return &Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Validate: NewValidator(),
		Users:    users,
		Auth:     authn,
		Tasks:    service.NewTaskService(tasks, hub),
		Hub:      hub,
	}
}

// NewValidator memakai nama field dari tag json supaya pesan validasi
// cocok dengan body request.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SeedAdmin membuat admin dari ADMIN_EMAIL/ADMIN_PASSWORD bila belum ada.
// Tidak ada endpoint yang bisa membuat admin.
func (d *Dependencies) SeedAdmin(ctx context.Context) error {
	if d.Config.AdminEmail == "" {
		return nil
	}
	hash, err := d.Auth.Hasher().Hash(d.Config.AdminPassword)
	if err != nil {
		return err
	}
	created, err := repository.CreateAdminUser(ctx, d.DB, d.Config.AdminEmail, hash)
	if err != nil {
		return err
	}
	if created {
		logger.SystemLogger.Info("Bootstrap admin created", zap.String("email", d.Config.AdminEmail))
	}
	return nil
}
