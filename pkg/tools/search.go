package tools

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"example.com/tabular-agent/pkg/services"
)

const (
	defaultTopK = 5
	maxTopK     = 20
)

// RowSource supplies the rows to search over.
type RowSource interface {
	Rows(ctx context.Context) ([]services.Row, error)
}

// Embedder turns text into vectors, one per input.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float64, error)
}

// SearchArgs defines the arguments for the search tool.
type SearchArgs struct {
	Query string `json:"query" description:"What to look for in the stored CSV rows."`
	TopK  int    `json:"top_k,omitempty" description:"How many rows to return (default 5, at most 20)."`
}

// SearchHit is one retrieved row.
type SearchHit struct {
	File  string  `json:"file"`
	Line  int     `json:"line"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SearchResult defines the output of the search tool.
type SearchResult struct {
	Results []SearchHit `json:"results"`
}

// NewSearchTool creates the search_stored_data tool, which ranks stored CSV
// rows by embedding similarity to the query.
func NewSearchTool(logger *zap.Logger, source RowSource, embedder Embedder) (tool.Tool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        "search_stored_data",
			Description: "Retrieve the rows of the uploaded CSV files most relevant to a question. Answer from the returned rows.",
		},
		func(ctx tool.Context, args SearchArgs) (SearchResult, error) {
			return searchRows(ctx, logger, source, embedder, args)
		},
	)
}

func searchRows(ctx context.Context, logger *zap.Logger, source RowSource, embedder Embedder, args SearchArgs) (SearchResult, error) {
	if args.Query == "" {
		return SearchResult{}, fmt.Errorf("query is required")
	}
	k := args.TopK
	if k <= 0 {
		k = defaultTopK
	}
	k = min(k, maxTopK)

	rows, err := source.Rows(ctx)
	if err != nil {
		return SearchResult{}, fmt.Errorf("read stored rows: %w", err)
	}
	if len(rows) == 0 {
		return SearchResult{}, nil
	}

	inputs := make([]string, 0, len(rows)+1)
	inputs = append(inputs, args.Query)
	for _, r := range rows {
		inputs = append(inputs, r.Text)
	}
	vectors, err := embedder.Embed(ctx, inputs)
	if err != nil {
		return SearchResult{}, fmt.Errorf("embed rows: %w", err)
	}
	if len(vectors) != len(inputs) {
		return SearchResult{}, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(vectors))
	}

	hits := make([]SearchHit, len(rows))
	for i, r := range rows {
		hits[i] = SearchHit{File: r.File, Line: r.Line, Text: r.Text, Score: cosine(vectors[0], vectors[i+1])}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}

	if logger != nil {
		logger.Debug("searched stored data", zap.Int("rows", len(rows)), zap.Int("hits", len(hits)))
	}
	return SearchResult{Results: hits}, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
