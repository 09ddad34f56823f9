package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
	"github.com/michaelbrown/ctxlaunch/internal/storage"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err, "opening memory db")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGetServer(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := &storage.Record{
		ID:          "github",
		Command:     "docker",
		Args:        []string{"run", "-i", "--rm", "ghcr.io/github/github-mcp-server"},
		Env:         map[string]string{"GITHUB_PERSONAL_ACCESS_TOKEN": "x"},
		Description: "GitHub tools",
	}
	require.NoError(t, s.PutServer(ctx, rec))
	assert.NotEmpty(t, rec.UUID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.GetServer(ctx, "github")
	require.NoError(t, err)
	assert.Equal(t, rec.UUID, got.UUID)
	assert.Equal(t, "docker", got.Command)
	assert.Equal(t, rec.Args, got.Args)
	assert.Equal(t, rec.Env, got.Env)
	assert.Equal(t, "GitHub tools", got.Description)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestPutServerReplaceKeepsUUID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := &storage.Record{ID: "x", Command: "old"}
	require.NoError(t, s.PutServer(ctx, first))

	second := &storage.Record{ID: "x", Command: "new", Args: []string{"--stdio"}}
	require.NoError(t, s.PutServer(ctx, second))
	assert.Equal(t, first.UUID, second.UUID)

	got, err := s.GetServer(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Command)
	assert.Equal(t, []string{"--stdio"}, got.Args)
	assert.Equal(t, map[string]string{}, got.Env)

	all, err := s.ListServers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPutServerConcurrentSameID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctxlaunch.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	recs := make([]*storage.Record, 16)
	var wg sync.WaitGroup
	for i := range recs {
		recs[i] = &storage.Record{ID: "shared", Command: fmt.Sprintf("cmd-%d", i)}
		wg.Add(1)
		go func(rec *storage.Record) {
			defer wg.Done()
			assert.NoError(t, s.PutServer(ctx, rec))
		}(recs[i])
	}
	wg.Wait()

	got, err := s.GetServer(ctx, "shared")
	require.NoError(t, err)
	for _, rec := range recs {
		assert.Equal(t, got.UUID, rec.UUID)
		assert.True(t, got.CreatedAt.Equal(rec.CreatedAt))
	}

	all, err := s.ListServers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPutServerReturnsExistingRowAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctxlaunch.db")
	ctx := context.Background()

	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	first := &storage.Record{ID: "x", Command: "old"}
	require.NoError(t, a.PutServer(ctx, first))
	second := &storage.Record{ID: "x", Command: "new"}
	require.NoError(t, b.PutServer(ctx, second))

	assert.Equal(t, first.UUID, second.UUID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	got, err := a.GetServer(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Command)
}

func TestPutServerValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	assert.Error(t, s.PutServer(ctx, &storage.Record{Command: "x"}))
	assert.Error(t, s.PutServer(ctx, &storage.Record{ID: "x"}))
}

func TestGetServerNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetServer(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListServersOrdered(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"ccc", "aaa", "bbb"} {
		require.NoError(t, s.PutServer(ctx, &storage.Record{ID: id, Command: id + "-server"}))
	}

	records, err := s.ListServers(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "aaa", records[0].ID)
	assert.Equal(t, "ccc", records[2].ID)
}

func TestListServersEmpty(t *testing.T) {
	s := testStore(t)

	records, err := s.ListServers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteServer(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutServer(ctx, &storage.Record{ID: "del", Command: "x"}))
	require.NoError(t, s.DeleteServer(ctx, "del"))

	_, err := s.GetServer(ctx, "del")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.DeleteServer(ctx, "del")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoredEntriesLayerOverBuiltin(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutServer(ctx, &storage.Record{
		ID:      launch.NotepadPPServerID,
		Command: "uvx",
		Args:    []string{"notepadpp-mcp"},
	}))
	require.NoError(t, s.PutServer(ctx, &storage.Record{ID: "fs", Command: "npx", Args: []string{"-y", "fs-server"}}))

	entries, err := storage.Entries(ctx, s)
	require.NoError(t, err)

	r, err := launch.Layer(entries)
	require.NoError(t, err)

	spec, err := r.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)
	assert.Equal(t, "uvx", spec.Executable)

	spec, err = r.Resolve("fs")
	require.NoError(t, err)
	assert.Equal(t, []string{"-y", "fs-server"}, spec.Args)
}

func TestOpenFileReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ctxlaunch.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.PutServer(ctx, &storage.Record{ID: "persist", Command: "x"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetServer(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Command)
}
