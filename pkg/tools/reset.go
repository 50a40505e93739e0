package tools

import (
	"go.uber.org/zap"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"example.com/tabular-agent/pkg/config"
)

// ResetArgs defines the arguments for the reset tool.
type ResetArgs struct {
	Confirm bool `json:"confirm" description:"Must be true to delete the SQL database built from the stored files."`
}

// ResetResult defines the output of the reset tool.
type ResetResult struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// NewResetSQLDBTool creates the reset_sql_database tool, which wipes the SQL
// database directory so it can be rebuilt from the uploaded files.
func NewResetSQLDBTool(logger *zap.Logger, sqldbDir string) (tool.Tool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        "reset_sql_database",
			Description: "Delete the SQL database built from the uploaded CSV files. Use only when the user asks to start over.",
		},
		func(ctx tool.Context, args ResetArgs) (ResetResult, error) {
			return resetSQLDB(logger, sqldbDir, args), nil
		},
	)
}

func resetSQLDB(logger *zap.Logger, dir string, args ResetArgs) ResetResult {
	if !args.Confirm {
		return ResetResult{Path: dir, Outcome: "not confirmed"}
	}
	res := config.RemoveDirectory(logger, dir)
	out := ResetResult{Path: res.Path, Outcome: string(res.Outcome)}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
