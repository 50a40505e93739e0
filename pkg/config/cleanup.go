package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// ErrNotDirectory is the CleanupResult error when the path exists but is a
// file or a symlink.
var ErrNotDirectory = errors.New("not a directory")

var removeAll = os.RemoveAll

// CleanupOutcome describes what RemoveDirectory did.
type CleanupOutcome string

const (
	CleanupRemoved CleanupOutcome = "removed"
	CleanupSkipped CleanupOutcome = "skipped"
	CleanupFailed  CleanupOutcome = "failed"
)

// CleanupResult reports a best-effort removal.
type CleanupResult struct {
	Path    string         `json:"path"`
	Outcome CleanupOutcome `json:"outcome"`
	Err     error          `json:"-"`
}

// Removed reports whether the directory is gone because of this call.
func (r CleanupResult) Removed() bool {
	return r.Outcome == CleanupRemoved
}

// RemoveDirectory deletes the directory at path and everything below it. It
// never returns an error: failures, including a path that is not a directory,
// are logged and reported through the result.
func RemoveDirectory(logger *zap.Logger, path string) CleanupResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := CleanupResult{Path: path}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Outcome = CleanupSkipped
			logger.Info("directory does not exist", zap.String("path", path))
			return res
		}
		res.Outcome, res.Err = CleanupFailed, err
		logger.Error("error removing directory", zap.String("path", path), zap.Error(err))
		return res
	}

	if !info.IsDir() {
		res.Outcome, res.Err = CleanupFailed, fmt.Errorf("%w: %s", ErrNotDirectory, path)
		logger.Error("error removing directory", zap.String("path", path), zap.Error(res.Err))
		return res
	}

	if err := removeAll(path); err != nil {
		res.Outcome, res.Err = CleanupFailed, err
		logger.Error("error removing directory", zap.String("path", path), zap.Error(err))
		return res
	}

	res.Outcome = CleanupRemoved
	logger.Info("directory successfully removed", zap.String("path", path))
	return res
}
