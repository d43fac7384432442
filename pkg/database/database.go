package database

import (
	"database/sql"
	"fmt"
	"time"

	"task-manager/configs"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB membuka koneksi sesuai DB_DRIVER dan mengembalikan *gorm.DB.
func ConnectDB(cfg configs.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return ConnectPostgres(postgresDSN(cfg), cfg.Debug)
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, cfg.Debug)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func postgresDSN(cfg configs.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// ConnectPostgres memakai lib/pq sebagai driver, lalu dibungkus gorm.
func ConnectPostgres(dsn string, debug bool) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(debug))
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init gorm: %w", err)
	}
	return db, nil
}

// OpenSQLite dipakai untuk development dan test. Foreign key harus aktif
// supaya ON DELETE CASCADE berjalan.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite hanya mengizinkan satu writer
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig(debug bool) *gorm.Config {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Warn
	}
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	}
}

// Close menutup pool koneksi di bawah gorm.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
