package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

func TestRemoveDirectory_Missing(t *testing.T) {
	logger, logs := observedLogger()
	path := filepath.Join(t.TempDir(), "nope")

	res := RemoveDirectory(logger, path)

	assert.Equal(t, CleanupSkipped, res.Outcome)
	assert.False(t, res.Removed())
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, logs.FilterMessage("directory does not exist").Len())
}

func TestRemoveDirectory_Tree(t *testing.T) {
	logger, logs := observedLogger()
	root := filepath.Join(t.TempDir(), "sqldb")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sales.db"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "rows.csv"), []byte("a,b"), 0o644))

	res := RemoveDirectory(logger, root)

	assert.Equal(t, CleanupRemoved, res.Outcome)
	assert.True(t, res.Removed())
	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, logs.FilterMessage("directory successfully removed").Len())
}

func TestRemoveDirectory_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	logger, logs := observedLogger()

	parent := t.TempDir()
	root := filepath.Join(parent, "locked")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "inner", "data.csv"), []byte("a"), 0o644))
	require.NoError(t, os.Chmod(root, 0o500))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	var res CleanupResult
	require.NotPanics(t, func() { res = RemoveDirectory(logger, root) })

	assert.Equal(t, CleanupFailed, res.Outcome)
	assert.Error(t, res.Err)
	failures := logs.FilterMessage("error removing directory")
	require.Equal(t, 1, failures.Len())
	assert.Equal(t, zapcore.ErrorLevel, failures.All()[0].Level)
	_, err := os.Stat(root)
	assert.NoError(t, err)
}

func TestRemoveDirectory_NilLogger(t *testing.T) {
	res := RemoveDirectory(nil, filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, CleanupSkipped, res.Outcome)
}

func TestRemoveDirectory_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sales.db")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(dir, link))

	for _, path := range []string{file, link} {
		logger, logs := observedLogger()

		res := RemoveDirectory(logger, path)

		assert.Equal(t, CleanupFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, ErrNotDirectory)
		assert.Equal(t, 1, logs.FilterMessage("error removing directory").Len())
		_, err := os.Lstat(path)
		assert.NoError(t, err)
	}
}

func TestRemoveDirectory_RemoveFails(t *testing.T) {
	boom := errors.New("device busy")
	orig := removeAll
	removeAll = func(string) error { return boom }
	t.Cleanup(func() { removeAll = orig })

	logger, logs := observedLogger()
	root := t.TempDir()

	var res CleanupResult
	require.NotPanics(t, func() { res = RemoveDirectory(logger, root) })

	assert.Equal(t, CleanupFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, boom)
	assert.DirExists(t, root)
	assert.Equal(t, 1, logs.FilterMessage("error removing directory").Len())
}

func TestRemoveDirectory_ParentIsFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))
	logger, logs := observedLogger()

	res := RemoveDirectory(logger, filepath.Join(parent, "child"))

	assert.Equal(t, CleanupFailed, res.Outcome)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, logs.FilterMessage("error removing directory").Len())
}
