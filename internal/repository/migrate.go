package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*/*/up.sql
var migrationsFS embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var migrationVersionRegex = regexp.MustCompile(`^(\d+)`)

// SchemaMigration 已应用的迁移版本
type SchemaMigration struct {
	Version uint64 `gorm:"primaryKey"`
}

// Migration 单个迁移目录（migrations/<dialect>/<version>_<name>/up.sql）
type Migration struct {
	Version uint64
	Dialect string
	Dir     string
}

// UpSQL 读取迁移脚本
func (m Migration) UpSQL() (string, error) {
	b, err := fs.ReadFile(migrationsFS, path.Join("migrations", m.Dialect, m.Dir, "up.sql"))
	if err != nil {
		return "", fmt.Errorf("failed to read up.sql for migration %s: %w", m.Dir, err)
	}
	return string(b), nil
}

// MigrationsNewerThan 返回版本号大于 minVersion 的迁移（升序）
func MigrationsNewerThan(dialect string, minVersion uint64) ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, path.Join("migrations", dialect))
	if err != nil {
		return nil, fmt.Errorf("unknown migration dialect %q: %w", dialect, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		match := migrationVersionRegex.FindStringSubmatch(entry.Name())
		if len(match) != 2 {
			return nil, fmt.Errorf("invalid migration directory name: %s", entry.Name())
		}

		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s - %w", match[1], err)
		}
		if version <= minVersion {
			continue
		}

		migrations = append(migrations, Migration{Version: version, Dialect: dialect, Dir: entry.Name()})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// MigratePostgres 在事务内依次应用未执行的迁移
func MigratePostgres(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version BIGINT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current uint64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	migrations, err := MigrationsNewerThan(DialectPostgres, current)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		upSQL, err := m.UpSQL()
		if err != nil {
			return err
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		logger.Info("Applied migration", zap.Uint64("version", m.Version), zap.String("dir", m.Dir))
	}

	return nil
}

// MigrateSQLite gorm 版本的迁移（本地开发 / 测试）
func MigrateSQLite(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current SchemaMigration
	db.Model(&SchemaMigration{}).Select("version").Order("version desc").Limit(1).Scan(&current)

	migrations, err := MigrationsNewerThan(DialectSQLite, current.Version)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		err := db.Transaction(func(tx *gorm.DB) error {
			upSQL, err := m.UpSQL()
			if err != nil {
				return err
			}
			if err := tx.Exec(upSQL).Error; err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: m.Version}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}

	return nil
}
