package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/loadartifactstool"

	"example.com/tabular-agent/pkg/config"
	"example.com/tabular-agent/pkg/logging"
	"example.com/tabular-agent/pkg/openaiadapter"
	"example.com/tabular-agent/pkg/services"
	"example.com/tabular-agent/pkg/tools"
)

func main() {
	app := kingpin.New("tabular-agent", "Chat agent over uploaded CSV files")
	configPath := app.Flag("config", "Path to YAML configuration file").Default(config.DefaultPath).String()
	envFiles := app.Flag("env-file", "Local env file to load before reading the environment (repeatable)").Default(".env").Strings()
	logLevel := app.Flag("log-level", "Log level").Default("info").Enum("debug", "info", "warn", "error")
	agentKind := app.Flag("agent", "Which system role drives the agent").Default("sql").Enum("sql", "rag")
	resetSQLDB := app.Flag("reset-sqldb", "Remove the stored SQL database directory before starting").Bool()
	mode := app.Arg("mode", "Interface mode").Default("console").Enum("console", "webui")
	extraArgs := app.Arg("launcher-args", "Arguments passed to the launcher after a '--', e.g. -- -port 9000").Strings()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Step 1: environment, then configuration. Both happen exactly once here.
	config.LoadEnvFile(logger, *envFiles...)

	cfg, err := config.Load(config.Options{Path: *configPath, Logger: logger})
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if *resetSQLDB {
		config.RemoveDirectory(logger, cfg.StoredSQLDBDirectory())
	}

	// Step 2: agent wiring
	artifactService := services.NewStoredDataArtifactService(cfg.StoredDataDirectory(), logger)

	resetTool, err := tools.NewResetSQLDBTool(logger, cfg.StoredSQLDBDirectory())
	if err != nil {
		logger.Fatal("failed to create reset tool", zap.Error(err))
	}
	agentTools := []tool.Tool{resetTool, loadartifactstool.New()}

	instruction := cfg.AgentSystemRole()
	if *agentKind == "rag" {
		instruction = cfg.RAGSystemRole()

		embedder := openaiadapter.NewEmbedder(cfg.APIClient(), cfg.EmbeddingModelName())
		searchTool, err := tools.NewSearchTool(logger, artifactService, embedder)
		if err != nil {
			logger.Fatal("failed to create search tool", zap.Error(err))
		}
		agentTools = append(agentTools, searchTool)
	}

	tabularAgent, err := llmagent.New(llmagent.Config{
		Name:        *agentKind + "_agent",
		Model:       cfg.ChatModel(),
		Description: "Answers questions about the uploaded CSV files.",
		Instruction: instruction,
		Tools:       agentTools,
	})
	if err != nil {
		logger.Fatal("failed to create agent", zap.Error(err))
	}

	launcherConfig := &launcher.Config{
		AgentLoader:     agent.NewSingleLoader(tabularAgent),
		ArtifactService: artifactService,
	}

	// Step 3: run the selected interface
	l := full.NewLauncher()
	if err := l.Execute(context.Background(), launcherConfig, launcherArgs(*mode, *extraArgs)); err != nil {
		logger.Fatal("run failed", zap.Error(err), zap.String("usage", l.CommandLineSyntax()))
	}
}

// launcherArgs maps an interface mode to launcher keywords. Extra args land
// right after the first keyword, where the launcher parses its own flags.
func launcherArgs(mode string, extra []string) []string {
	keywords := []string{"console"}
	if mode == "webui" {
		keywords = []string{"web", "api", "webui"}
	}

	args := append([]string{keywords[0]}, extra...)
	return append(args, keywords[1:]...)
}
