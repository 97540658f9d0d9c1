package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores returns every driver that can run here; redis only when FLOWNOTE_TEST_REDIS is set
func stores(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemoryStore()}

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	out["file"] = fs

	if addr := os.Getenv("FLOWNOTE_TEST_REDIS"); addr != "" {
		rs, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "flownote-test:"})
		require.NoError(t, err)
		out["redis"] = rs
	}
	return out
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, err := s.Get(ctx, "flownotes:missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "flownotes:c1", []byte(`[{"id":"1"}]`)))
			got, err := s.Get(ctx, "flownotes:c1")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"1"}]`, string(got))

			require.NoError(t, s.Put(ctx, "flownotes:c1", []byte(`[]`)))
			got, err = s.Get(ctx, "flownotes:c1")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, s.Delete(ctx, "flownotes:c1"))
			require.NoError(t, s.Delete(ctx, "flownotes:c1"))
			_, err = s.Get(ctx, "flownotes:c1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStore_KeyCannotEscape(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "../../etc/x", []byte("v")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, s.Put(context.Background(), "k", v))
	v[0] = 'x'

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Config{Type: TypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(context.Background(), Config{Type: "etcd"})
	assert.Error(t, err)
}
