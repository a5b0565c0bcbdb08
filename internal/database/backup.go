package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"touragency/internal/config"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

const (
	backupPrefix    = "tour_agency_"
	backupStamp     = "20060102_150405.000"
	defaultInterval = 24 * time.Hour
)

// BackupService snapshots the SQLite file on a fixed interval.
type BackupService struct {
	source string
	cfg    config.BackupConfig
	log    zerolog.Logger
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "backup").Logger()
	}
	return &BackupService{source: dbPath, cfg: cfg, log: log}
}

// interval parses the schedule as a Go duration.
func (s *BackupService) interval() time.Duration {
	if s.cfg.Schedule == "" {
		return defaultInterval
	}
	d, err := time.ParseDuration(s.cfg.Schedule)
	if err != nil || d <= 0 {
		s.log.Warn().Str("schedule", s.cfg.Schedule).Msg("invalid backup schedule, using 24h")
		return defaultInterval
	}
	return d
}

// Start blocks until ctx is done, taking one backup immediately and then one
// per schedule interval.
func (s *BackupService) Start(ctx context.Context) {
	switch {
	case !s.cfg.Enabled:
		s.log.Info().Msg("backup service is disabled")
		return
	case s.source == ":memory:":
		s.log.Warn().Msg("in-memory database cannot be backed up")
		return
	}

	every := s.interval()
	s.log.Info().Dur("interval", every).Str("dir", s.cfg.StoragePath).Msg("backup service started")

	run := func(stage string) {
		if err := s.PerformBackup(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Str("stage", stage).Msg("backup failed")
		}
		s.CleanupOldBackups()
	}

	run("initial")
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			run("scheduled")
		}
	}
}

// PerformBackup writes one snapshot into the storage directory.
func (s *BackupService) PerformBackup(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	target := filepath.Join(s.cfg.StoragePath, backupPrefix+time.Now().Format(backupStamp)+".db")

	vacuumErr := vacuumInto(ctx, s.source, target)
	if vacuumErr == nil {
		s.log.Info().Str("path", target).Msg("backup completed")
		return nil
	}
	s.log.Warn().Err(vacuumErr).Msg("VACUUM INTO failed, copying file instead")

	if err := copyFile(s.source, target); err != nil {
		return errors.Join(vacuumErr, err)
	}
	s.log.Info().Str("path", target).Msg("backup copied")
	return nil
}

// vacuumInto produces a consistent copy while the live database stays open.
func vacuumInto(ctx context.Context, source, target string) error {
	db, err := sql.Open("sqlite3", source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer db.Close()

	quoted := "'" + strings.ReplaceAll(target, "'", "''") + "'"
	_, err = db.ExecContext(ctx, "VACUUM INTO "+quoted)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CleanupOldBackups removes snapshots older than the retention window and
// returns how many were deleted. Files without the backup prefix are left alone.
func (s *BackupService) CleanupOldBackups() int {
	if s.cfg.RetentionDays <= 0 {
		return 0
	}
	entries, err := os.ReadDir(s.cfg.StoragePath)
	if err != nil {
		s.log.Error().Err(err).Msg("read backup dir")
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.StoragePath, e.Name())); err != nil {
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("remove old backup")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("old backups pruned")
	}
	return removed
}
