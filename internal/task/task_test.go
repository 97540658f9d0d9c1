package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/safe_close"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	startup  bool
	panics   bool
}

func (t *countingTask) Name() string                { return "counting" }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("task failure")
	}
	return ctx.Err()
}

func TestScheduler_RunsUntilClosed(t *testing.T) {
	tests := []struct {
		name    string
		task    *countingTask
		atLeast int32
	}{
		{name: "startup and loop", task: &countingTask{interval: 5 * time.Millisecond, startup: true}, atLeast: 3},
		{name: "loop only", task: &countingTask{interval: 5 * time.Millisecond}, atLeast: 2},
		{name: "panics are recovered", task: &countingTask{interval: 5 * time.Millisecond, panics: true}, atLeast: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := safe_close.NewSafeClose()
			s := NewScheduler(zap.NewNop(), sc)
			s.AddTask(tt.task)
			s.Start()

			assert.Eventually(t, func() bool { return tt.task.runs.Load() >= tt.atLeast }, time.Second, time.Millisecond)

			sc.SendCloseSignal(nil)
			require.NoError(t, sc.WaitClosed())
			stopped := tt.task.runs.Load()
			time.Sleep(20 * time.Millisecond)
			assert.Equal(t, stopped, tt.task.runs.Load())
		})
	}
}

func newTestApp(t *testing.T, yaml string) *app.App {
	t.Helper()
	cfg, err := app.ParseConfig([]byte(yaml))
	require.NoError(t, err)
	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: ":memory:", MaxIdleConns: 1, MaxOpenConns: 1})
	require.NoError(t, err)
	a, err := app.NewApp(cfg, zap.NewNop(), db, kvstore.NewMemoryStore(), app.Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestManager_RegisterTasks(t *testing.T) {
	t.Run("backup disabled", func(t *testing.T) {
		m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), newTestApp(t, ""))
		require.NoError(t, m.RegisterTasks())
		assert.Empty(t, m.Tasks())
	})

	t.Run("backup enabled", func(t *testing.T) {
		dir := t.TempDir()
		a := newTestApp(t, "backup:\n  enabled: true\n  storage:\n    type: localfs\n    save-path: "+dir+"\n")
		m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), a)
		require.NoError(t, m.RegisterTasks())
		require.Len(t, m.Tasks(), 1)

		backup := m.Tasks()[0]
		assert.Equal(t, "NoteBackup", backup.Name())
		assert.Equal(t, time.Minute, backup.LoopInterval())
		assert.True(t, backup.IsStartupRun())
		assert.NoError(t, backup.Run(context.Background()))
	})
}
