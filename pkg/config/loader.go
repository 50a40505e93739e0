package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go-simpler.org/env"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"example.com/tabular-agent/pkg/openaiadapter"
)

// DefaultPath is the configuration file used when Options.Path is empty.
const DefaultPath = "configs/app_config.yml"

// Options controls where Load reads from.
type Options struct {
	// Path of the YAML file. Defaults to DefaultPath.
	Path string
	// Env overrides the process environment, e.g. env.Map in tests.
	Env    env.Source
	Logger *zap.Logger
}

// FileLoader implements Loader over a YAML file plus the environment.
type FileLoader struct {
	opts Options
}

// NewFileLoader creates a loader that reads with the given options on every Load.
func NewFileLoader(opts Options) *FileLoader {
	return &FileLoader{opts: opts}
}

// Load implements Loader.
func (l *FileLoader) Load() (*Configuration, error) {
	return Load(l.opts)
}

// Load resolves the environment table and the YAML file, then builds the API
// client and the chat model. Nothing is constructed unless every required
// setting resolved.
func Load(opts Options) (*Configuration, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}

	envCfg, err := loadEnv(opts.Env)
	if err != nil {
		return nil, err
	}

	fileCfg, err := loadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(fileCfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := &Configuration{
		storedDataDirectory:  *fileCfg.Directories.StoredCSVXLSXDirectory,
		storedSQLDBDirectory: *fileCfg.Directories.StoredCSVXLSXSQLDBDirectory,
		modelName:            envCfg.ModelName,
		agentSystemRole:      *fileCfg.LLMConfig.AgentLLMSystemRole,
		ragSystemRole:        *fileCfg.LLMConfig.RAGLLMSystemRole,
		temperature:          *fileCfg.LLMConfig.Temperature,
		embeddingModelName:   envCfg.EmbeddingModelName,
	}
	cfg.apiClient = openaiadapter.NewAPIClient(envCfg.APIKey, envCfg.BaseURL)
	cfg.chatModel = openaiadapter.NewChatModel(openaiadapter.Options{
		BaseURL:     envCfg.BaseURL,
		APIKey:      envCfg.APIKey,
		ModelName:   cfg.modelName,
		Temperature: cfg.temperature,
		Logger:      logger,
	})

	logger.Info("configuration loaded",
		zap.String("path", path),
		zap.String("model", cfg.modelName),
		zap.String("embedding_model", cfg.embeddingModelName),
		zap.Float64("temperature", cfg.temperature),
		zap.String("stored_data_directory", cfg.storedDataDirectory),
		zap.String("stored_sqldb_directory", cfg.storedSQLDBDirectory),
	)
	return cfg, nil
}

// loadEnv resolves the environment table. The API key has no default and an
// empty value counts as unset.
func loadEnv(src env.Source) (envConfig, error) {
	var cfg envConfig
	var opts *env.Options
	if src != nil {
		opts = &env.Options{Source: src}
	}
	if err := env.Load(&cfg, opts); err != nil {
		return envConfig{}, fmt.Errorf("load environment: %w", err)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return envConfig{}, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrCredentialMissing)
	}
	return cfg, nil
}

func loadFromFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return &cfg, nil
}

func requireKeys(cfg *fileConfig) error {
	var missing []string
	if cfg.Directories.StoredCSVXLSXDirectory == nil {
		missing = append(missing, "directories.stored_csv_xlsx_directory")
	}
	if cfg.Directories.StoredCSVXLSXSQLDBDirectory == nil {
		missing = append(missing, "directories.stored_csv_xlsx_sqldb_directory")
	}
	if cfg.LLMConfig.AgentLLMSystemRole == nil {
		missing = append(missing, "llm_config.agent_llm_system_role")
	}
	if cfg.LLMConfig.RAGLLMSystemRole == nil {
		missing = append(missing, "llm_config.rag_llm_system_role")
	}
	if cfg.LLMConfig.Temperature == nil {
		missing = append(missing, "llm_config.temperature")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigKeyMissing, strings.Join(missing, ", "))
	}
	return nil
}
