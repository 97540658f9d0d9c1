package dao

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/model"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
	})
	require.NoError(t, err)

	wq := writequeue.New(nil, zap.NewNop())
	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, zap.NewNop(), wq)
}

func sampleNote(id string, createdAt time.Time, tags ...string) *domain.Note {
	if tags == nil {
		tags = []string{}
	}
	return &domain.Note{
		ID:        id,
		Title:     "title " + id,
		Content:   "content " + id,
		Tags:      tags,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// repositoryContract runs the same behaviour checks against every backend
func repositoryContract(t *testing.T, repo domain.NoteRepository, owner, stranger domain.Identity) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, sampleNote("a", base, "work"), owner)
	require.NoError(t, err)
	_, err = repo.Create(ctx, sampleNote("b", base.Add(time.Hour), "work/projects", "life"), owner)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "b", owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"life", "work/projects"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Hour)))

	list, err := repo.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)

	count, err := repo.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.GetByID(ctx, "a", stranger)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	edit := sampleNote("a", base.Add(48*time.Hour), "edited")
	edit.UpdatedAt = base.Add(48 * time.Hour)
	edit.Content = "changed"
	updated, err := repo.Update(ctx, edit, owner)
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)
	assert.Equal(t, []string{"edited"}, updated.Tags)
	assert.True(t, updated.CreatedAt.Equal(base), "createdAt is kept")
	assert.True(t, updated.UpdatedAt.Equal(base.Add(48*time.Hour)))

	_, err = repo.Update(ctx, sampleNote("missing", base), owner)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	require.NoError(t, repo.Delete(ctx, "a", owner))
	assert.ErrorIs(t, repo.Delete(ctx, "a", owner), domain.ErrNoteNotFound)

	count, err = repo.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNoteRepository_Contract(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	repositoryContract(t, repo, domain.Identity{UID: 1}, domain.Identity{UID: 2})

	uids, err := repo.ListUIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, uids)
}

func TestNoteRepository_MalformedTagsJSON(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleNote("x", time.Now()), domain.Identity{UID: 7})
	require.NoError(t, err)

	require.NoError(t, d.DB().Model(&model.Note{}).Where("id = ?", "x").
		Updates(map[string]any{"tags_json": "{not json", "content": "fix #bug/ui soon"}).Error)

	got, err := repo.GetByID(ctx, "x", domain.Identity{UID: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"bug/ui"}, got.Tags)
}

func TestLocalNoteRepository_Contract(t *testing.T) {
	stores := map[string]func(t *testing.T) kvstore.Store{
		"memory": func(t *testing.T) kvstore.Store { return kvstore.NewMemoryStore() },
		"file": func(t *testing.T) kvstore.Store {
			s, err := kvstore.NewFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}
	if addr := os.Getenv("FLOWNOTE_TEST_REDIS"); addr != "" {
		stores["redis"] = func(t *testing.T) kvstore.Store {
			s, err := kvstore.NewRedisStore(context.Background(), kvstore.RedisConfig{Addr: addr, Prefix: "flownote-test:" + t.Name() + ":"})
			require.NoError(t, err)
			t.Cleanup(func() {
				_ = s.Delete(context.Background(), BlobKey(domain.Identity{ClientID: "tab-1"}))
			})
			return s
		}
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			wq := writequeue.New(nil, zap.NewNop())
			t.Cleanup(func() { _ = wq.Shutdown(context.Background()) })

			repo := NewLocalNoteRepository(open(t), wq, zap.NewNop())
			repositoryContract(t, repo, domain.Identity{ClientID: "tab-1"}, domain.Identity{ClientID: "tab-2"})
		})
	}
}

func TestLocalNoteRepository_ValidatesOnLoad(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	owner := domain.Identity{}

	blob := `[
		{"id":"ok","content":"hello","tags":["b","#a","bad tag","a"],"createdAt":"2024-05-01T08:00:00Z","extra":1},
		{"content":"no id"},
		{"id":"bare"}
	]`
	require.NoError(t, store.Put(ctx, BlobKey(owner), []byte(blob)))

	repo := NewLocalNoteRepository(store, nil, nil)
	list, err := repo.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "ok", list[0].ID)
	assert.Equal(t, []string{"a", "b"}, list[0].Tags)
	assert.Equal(t, "bare", list[1].ID)
	assert.True(t, list[1].CreatedAt.IsZero())
}

func TestLocalNoteRepository_CorruptBlob(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, LocalStorageKey, []byte("{oops")))

	repo := NewLocalNoteRepository(store, nil, nil)
	list, err := repo.List(ctx, domain.Identity{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBlobKey(t *testing.T) {
	assert.Equal(t, "flownotes", BlobKey(domain.Identity{}))
	assert.Equal(t, "flownotes:tab", BlobKey(domain.Identity{ClientID: "tab", UID: 3}))
	assert.Equal(t, "flownotes:u3", BlobKey(domain.Identity{UID: 3}))
}
