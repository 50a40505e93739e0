package config

import "errors"

var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrConfigKeyMissing  = errors.New("config key missing")
	ErrConfigParse       = errors.New("config file malformed")
	ErrCredentialMissing = errors.New("credential missing")
)
