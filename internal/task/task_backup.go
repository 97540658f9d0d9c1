package task

import (
	"context"
	"time"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/service"

	"go.uber.org/zap"
)

// NoteBackupTask checks every minute whether the configured backup cron is due
// NoteBackupTask 每分钟检查一次备份计划是否到期
type NoteBackupTask struct {
	backup service.BackupService
	logger *zap.Logger
}

// Name returns the task name
func (t *NoteBackupTask) Name() string {
	return "NoteBackup"
}

// LoopInterval returns the execution interval (every minute)
func (t *NoteBackupTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun arms the schedule on startup
func (t *NoteBackupTask) IsStartupRun() bool {
	return true
}

// Run executes the backup processing
func (t *NoteBackupTask) Run(ctx context.Context) error {
	return t.backup.ExecuteTaskBackups(ctx)
}

// NewNoteBackupTask creates the backup task, nil when backups are disabled
func NewNoteBackupTask(appContainer *app.App) (Task, error) {
	if appContainer.BackupService == nil || !appContainer.Config().Backup.Enabled {
		appContainer.Logger().Info("note backup task is disabled")
		return nil, nil
	}
	return &NoteBackupTask{
		backup: appContainer.BackupService,
		logger: appContainer.Logger(),
	}, nil
}

func init() {
	RegisterWithApp(NewNoteBackupTask)
}
