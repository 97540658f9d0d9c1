package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/pkg/logger"
	"github.com/haierkeys/flownote-service/pkg/storage"
	"github.com/haierkeys/flownote-service/pkg/timex"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultBackupCron daily at 03:00
const DefaultBackupCron = "0 3 * * *"

// BackupConfig scheduled backup configuration
// BackupConfig 定时备份配置
type BackupConfig struct {
	Enabled bool           // Whether scheduled backups run // 是否启用定时备份
	Cron    string         // Five field cron expression // 五段式 cron 表达式
	Storage storage.Config // Backup target // 备份目标
}

// BackupService defines the business service interface for Backup
// 定义备份业务服务接口
type BackupService interface {
	// ExecuteTaskBackups backs up every user when the schedule is due
	// ExecuteTaskBackups 到达计划时间时备份全部用户
	ExecuteTaskBackups(ctx context.Context) error
	// BackupUser uploads one user's notes and returns the stored location, "" when there is nothing to back up
	// BackupUser 上传单个用户的笔记并返回存储位置
	BackupUser(ctx context.Context, uid int64, now time.Time) (string, error)
	// NextRunTime 下次执行时间
	NextRunTime() time.Time
}

// StorageFactory opens the backup target
type StorageFactory func(ctx context.Context) (storage.Storager, error)

type backupService struct {
	config   BackupConfig
	owners   domain.NoteOwnerRepository
	notes    domain.NoteRepository
	schedule cron.Schedule
	factory  StorageFactory
	logger   *zap.Logger
	clock    func() time.Time

	mu      sync.Mutex
	nextRun time.Time
	client  storage.Storager
}

// NewBackupService creates a BackupService over the remote store
// NewBackupService 创建基于远程存储的备份服务
func NewBackupService(cfg BackupConfig, owners domain.NoteOwnerRepository, notes domain.NoteRepository, lg *zap.Logger) (BackupService, error) {
	storageConfig := cfg.Storage
	return NewBackupServiceWithStorage(cfg, owners, notes, func(ctx context.Context) (storage.Storager, error) {
		return storage.NewClient(ctx, &storageConfig)
	}, lg)
}

// NewBackupServiceWithStorage uses factory to open the backup target
func NewBackupServiceWithStorage(cfg BackupConfig, owners domain.NoteOwnerRepository, notes domain.NoteRepository, factory StorageFactory, lg *zap.Logger) (BackupService, error) {
	if cfg.Cron == "" {
		cfg.Cron = DefaultBackupCron
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("parse backup cron %q: %w", cfg.Cron, err)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &backupService{
		config:   cfg,
		owners:   owners,
		notes:    notes,
		schedule: schedule,
		factory:  factory,
		logger:   lg,
		clock:    func() time.Time { return time.Time(timex.Now()) },
	}, nil
}

func (s *backupService) NextRunTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// due reports whether a run should start now and advances the schedule
func (s *backupService) due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextRun.IsZero() {
		s.nextRun = s.schedule.Next(now)
		return false
	}
	if now.Before(s.nextRun) {
		return false
	}
	s.nextRun = s.schedule.Next(now)
	return true
}

func (s *backupService) storageClient(ctx context.Context) (storage.Storager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	client, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// ExecuteTaskBackups 执行到期的备份
func (s *backupService) ExecuteTaskBackups(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}
	now := s.clock()
	if !s.due(now) {
		return nil
	}

	uids, err := s.owners.ListUIDs(ctx)
	if err != nil {
		return fmt.Errorf("list backup owners: %w", err)
	}

	var errs []error
	for _, uid := range uids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		location, err := s.BackupUser(ctx, uid, now)
		if err != nil {
			s.logger.Error("note backup failed",
				zap.Int64(logger.FieldUID, uid),
				zap.String(logger.FieldTask, "NoteBackup"),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("note backup done",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldPath, location),
		)
	}
	return errors.Join(errs...)
}

// BackupUser 备份单个用户
func (s *backupService) BackupUser(ctx context.Context, uid int64, now time.Time) (string, error) {
	notes, err := s.notes.List(ctx, domain.Identity{UID: uid})
	if err != nil {
		return "", fmt.Errorf("load notes of %d: %w", uid, err)
	}
	if len(notes) == 0 {
		return "", nil
	}
	data, err := EncodeNotes(notes)
	if err != nil {
		return "", err
	}

	client, err := s.storageClient(ctx)
	if err != nil {
		return "", fmt.Errorf("open backup storage: %w", err)
	}
	key := fmt.Sprintf("backup/%d/%s", uid, ExportFileName(now))
	return client.SendContent(ctx, key, data, now)
}
