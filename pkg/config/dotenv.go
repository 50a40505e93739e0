package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnvFile loads local env files (".env" when no paths are given) into the
// process environment without overriding variables that are already set. It
// reports whether loading succeeded; a missing file is not an error.
func LoadEnvFile(logger *zap.Logger, paths ...string) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := godotenv.Load(paths...); err != nil {
		logger.Info("environment variables are loaded: false", zap.Strings("files", paths), zap.Error(err))
		return false
	}
	logger.Info("environment variables are loaded: true", zap.Strings("files", paths))
	return true
}
