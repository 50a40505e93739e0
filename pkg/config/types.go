package config

import (
	openaisdk "github.com/openai/openai-go"

	"example.com/tabular-agent/pkg/openaiadapter"
)

// Loader defines how configuration is loaded.
type Loader interface {
	Load() (*Configuration, error)
}

// Configuration holds every resolved setting and the clients built from
// them. It is fully populated by Load and never mutated afterwards, so it can
// be shared freely between goroutines.
type Configuration struct {
	storedDataDirectory  string
	storedSQLDBDirectory string

	modelName          string
	agentSystemRole    string
	ragSystemRole      string
	temperature        float64
	embeddingModelName string

	apiClient openaisdk.Client
	chatModel *openaiadapter.ChatModel
}

// StoredDataDirectory is where uploaded CSV files are kept.
func (c *Configuration) StoredDataDirectory() string { return c.storedDataDirectory }

// StoredSQLDBDirectory is where the SQL database built from the stored files lives.
func (c *Configuration) StoredSQLDBDirectory() string { return c.storedSQLDBDirectory }

// ModelName is the chat deployment name, from gpt_deployment_name.
func (c *Configuration) ModelName() string { return c.modelName }

// AgentSystemRole is the system prompt of the SQL agent.
func (c *Configuration) AgentSystemRole() string { return c.agentSystemRole }

// RAGSystemRole is the system prompt of the retrieval agent.
func (c *Configuration) RAGSystemRole() string { return c.ragSystemRole }

// Temperature is the sampling temperature bound to the chat model.
func (c *Configuration) Temperature() float64 { return c.temperature }

// EmbeddingModelName is the embedding deployment name, from embed_deployment_name.
func (c *Configuration) EmbeddingModelName() string { return c.embeddingModelName }

// APIClient returns the generic OpenAI API client.
func (c *Configuration) APIClient() openaisdk.Client { return c.apiClient }

// ChatModel returns the chat-model client bound to ModelName and Temperature.
func (c *Configuration) ChatModel() *openaiadapter.ChatModel { return c.chatModel }

// fileConfig mirrors the YAML document. Pointers distinguish absent keys
// from zero values.
type fileConfig struct {
	Directories struct {
		StoredCSVXLSXDirectory      *string `yaml:"stored_csv_xlsx_directory"`
		StoredCSVXLSXSQLDBDirectory *string `yaml:"stored_csv_xlsx_sqldb_directory"`
	} `yaml:"directories"`
	LLMConfig struct {
		AgentLLMSystemRole *string  `yaml:"agent_llm_system_role"`
		RAGLLMSystemRole   *string  `yaml:"rag_llm_system_role"`
		Temperature        *float64 `yaml:"temperature"`
	} `yaml:"llm_config"`
}

// envConfig is the declared table of environment variables and their defaults.
type envConfig struct {
	APIKey             string `env:"OPENAI_API_KEY"`
	BaseURL            string `env:"OPENAI_BASE_URL"`
	ModelName          string `env:"gpt_deployment_name" default:"gpt-4-mini"`
	EmbeddingModelName string `env:"embed_deployment_name" default:"text-embedding-3-small"`
}
