package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/gorm/utils"

	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// SchemaVersion describes the current database schema version. It must be incremented if a manual migration is needed.
var SchemaVersion uint64 = 1

// settingsRowId is the primary key of the single settings rows.
const settingsRowId = 1

// SysStat stores the current database schema version and the timestamp when it was applied.
type SysStat struct {
	MigratedAt    time.Time `gorm:"column:migrated_at"`
	SchemaVersion uint64    `gorm:"primaryKey,column:schema_version"`
}

// RouterSettings is the persisted router connection.
type RouterSettings struct {
	Id        uint   `gorm:"primaryKey"`
	Address   string `gorm:"column:address"`
	Port      string `gorm:"column:port"`
	Username  string `gorm:"column:username"`
	Password  string `gorm:"column:password;serializer:encstr"`
	UseHttps  bool   `gorm:"column:use_https"`
	UpdatedAt time.Time
}

func (RouterSettings) TableName() string {
	return "router_settings"
}

// WireGuardDefaultSettings is the persisted set of defaults for new peers.
type WireGuardDefaultSettings struct {
	Id             uint   `gorm:"primaryKey"`
	Endpoint       string `gorm:"column:endpoint"`
	Port           string `gorm:"column:port"`
	AllowedIpRange string `gorm:"column:allowed_ip_range"`
	Dns            string `gorm:"column:dns"`
	UpdatedAt      time.Time
}

func (WireGuardDefaultSettings) TableName() string {
	return "wireguard_defaults"
}

// GormLogger is a custom logger for Gorm, making it use slog
type GormLogger struct {
	SlowThreshold           time.Duration
	SourceField             string
	IgnoreErrRecordNotFound bool
	Debug                   bool
	Silent                  bool

	prefix string
}

func NewLogger(slowThreshold time.Duration, debug bool) *GormLogger {
	return &GormLogger{
		SlowThreshold:           slowThreshold,
		Debug:                   debug,
		IgnoreErrRecordNotFound: true,
		SourceField:             "src",
		prefix:                  "GORM-SQL: ",
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	l.Silent = level == logger.Silent
	return l
}

func (l *GormLogger) Info(ctx context.Context, s string, args ...any) {
	if !l.Silent {
		slog.InfoContext(ctx, l.prefix+s, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, s string, args ...any) {
	if !l.Silent {
		slog.WarnContext(ctx, l.prefix+s, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, s string, args ...any) {
	if !l.Silent {
		slog.ErrorContext(ctx, l.prefix+s, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		"rows", rows,
		"duration", elapsed,
	}
	if l.SourceField != "" {
		attrs = append(attrs, l.SourceField, utils.FileWithLineNum())
	}

	switch {
	case err != nil && !(errors.Is(err, gorm.ErrRecordNotFound) && l.IgnoreErrRecordNotFound):
		slog.ErrorContext(ctx, l.prefix+sql, append(attrs, "error", err)...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold:
		slog.WarnContext(ctx, l.prefix+sql, attrs...)
	case l.Debug:
		slog.DebugContext(ctx, l.prefix+sql, attrs...)
	}
}

// NewDatabase creates a new database connection and returns a Gorm database instance.
// The encrypted string serializer is registered before the connection is opened.
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	schema.RegisterSerializer("encstr", NewGormEncryptedStringSerializer(cfg.EncryptionPassphrase))

	gormCfg := &gorm.Config{
		Logger: NewLogger(cfg.SlowQueryThreshold, cfg.Debug),
	}

	var gormDb *gorm.DB
	var err error

	switch cfg.Type {
	case config.DatabaseMySQL:
		gormDb, err = gorm.Open(mysql.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}

		sqlDB, _ := gormDb.DB()
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(10)
		if err = sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
		}
	case config.DatabaseMsSQL:
		gormDb, err = gorm.Open(sqlserver.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlserver database: %w", err)
		}
	case config.DatabasePostgres:
		gormDb, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres database: %w", err)
		}
	case config.DatabaseSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "" && cfg.DSN != ":memory:" {
			if _, err = os.Stat(dir); os.IsNotExist(err) {
				if err = os.MkdirAll(dir, 0700); err != nil {
					return nil, fmt.Errorf("failed to create database base directory: %w", err)
				}
			}
		}
		gormCfg.DisableForeignKeyConstraintWhenMigrating = true
		gormDb, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, _ := gormDb.DB()
		sqlDB.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	return gormDb, nil
}

// SqlRepo is the settings store. It holds one router connection row and one WireGuard defaults row.
// Currently, it supports MySQL, SQLite, Microsoft SQL and Postgresql database systems.
type SqlRepo struct {
	db *gorm.DB
}

// NewSqlRepository creates a new SqlRepo instance and migrates the schema.
func NewSqlRepository(db *gorm.DB) (*SqlRepo, error) {
	repo := &SqlRepo{
		db: db,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

func (r *SqlRepo) migrate() error {
	if err := r.db.AutoMigrate(&SysStat{}); err != nil {
		return fmt.Errorf("sys-stat migration failed: %w", err)
	}
	if err := r.db.AutoMigrate(&RouterSettings{}); err != nil {
		return fmt.Errorf("router settings migration failed: %w", err)
	}
	if err := r.db.AutoMigrate(&WireGuardDefaultSettings{}); err != nil {
		return fmt.Errorf("wireguard defaults migration failed: %w", err)
	}
	slog.Debug("database migrations applied", "schema_version", SchemaVersion)

	existingSysStat := SysStat{}
	r.db.Where("schema_version = ?", SchemaVersion).First(&existingSysStat)
	if existingSysStat.SchemaVersion == 0 {
		sysStat := SysStat{
			MigratedAt:    time.Now(),
			SchemaVersion: SchemaVersion,
		}
		if err := r.db.Create(&sysStat).Error; err != nil {
			return fmt.Errorf("failed to write sysstat entry for schema version %d: %w", SchemaVersion, err)
		}
		slog.Debug("sys-stat entry written", "schema_version", SchemaVersion)
	}

	return nil
}

// region router-settings

// GetRouterConfig returns the stored router connection.
// If no connection is stored, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetRouterConfig(ctx context.Context) (domain.RouterConfig, error) {
	var row RouterSettings

	err := r.db.WithContext(ctx).First(&row, settingsRowId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RouterConfig{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.RouterConfig{}, err
	}

	return domain.RouterConfig{
		Address:  row.Address,
		Port:     row.Port,
		Username: row.Username,
		Password: row.Password,
		UseHttps: row.UseHttps,
	}, nil
}

// SaveRouterConfig creates or replaces the stored router connection.
func (r *SqlRepo) SaveRouterConfig(ctx context.Context, cfg domain.RouterConfig) error {
	row := RouterSettings{
		Id:        settingsRowId,
		Address:   cfg.Address,
		Port:      cfg.Port,
		Username:  cfg.Username,
		Password:  cfg.Password,
		UseHttps:  cfg.UseHttps,
		UpdatedAt: time.Now(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save router settings: %w", err)
	}

	return nil
}

// endregion router-settings

// region wireguard-defaults

// GetWireGuardDefaults returns the stored WireGuard defaults.
// If no defaults are stored, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetWireGuardDefaults(ctx context.Context) (domain.WireGuardDefaults, error) {
	var row WireGuardDefaultSettings

	err := r.db.WithContext(ctx).First(&row, settingsRowId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.WireGuardDefaults{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.WireGuardDefaults{}, err
	}

	return domain.WireGuardDefaults{
		Endpoint:       row.Endpoint,
		Port:           row.Port,
		AllowedIpRange: row.AllowedIpRange,
		Dns:            row.Dns,
	}, nil
}

// SaveWireGuardDefaults creates or replaces the stored WireGuard defaults.
func (r *SqlRepo) SaveWireGuardDefaults(ctx context.Context, defaults domain.WireGuardDefaults) error {
	row := WireGuardDefaultSettings{
		Id:             settingsRowId,
		Endpoint:       defaults.Endpoint,
		Port:           defaults.Port,
		AllowedIpRange: defaults.AllowedIpRange,
		Dns:            defaults.Dns,
		UpdatedAt:      time.Now(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save wireguard defaults: %w", err)
	}

	return nil
}

// endregion wireguard-defaults
