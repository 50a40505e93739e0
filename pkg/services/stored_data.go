package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/adk/artifact"
	"google.golang.org/genai"
)

// ErrReadOnly is returned by every mutating artifact operation.
var ErrReadOnly = errors.New("stored data artifacts are read-only")

// StoredDataArtifactService implements artifact.Service over the directory of
// uploaded CSV files.
type StoredDataArtifactService struct {
	rootDir string
	logger  *zap.Logger
}

var _ artifact.Service = (*StoredDataArtifactService)(nil)

// NewStoredDataArtifactService creates a service rooted at the stored data directory.
func NewStoredDataArtifactService(rootDir string, logger *zap.Logger) *StoredDataArtifactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoredDataArtifactService{rootDir: rootDir, logger: logger.Named("artifacts")}
}

func isStoredDataFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

func (s *StoredDataArtifactService) resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	if !isStoredDataFile(name) {
		return "", fmt.Errorf("not a CSV file: %q", name)
	}
	return filepath.Join(s.rootDir, name), nil
}

// List returns the CSV files in the stored data directory, sorted by
// name. A directory that does not exist yet lists as empty.
func (s *StoredDataArtifactService) List(ctx context.Context, req *artifact.ListRequest) (*artifact.ListResponse, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &artifact.ListResponse{}, nil
		}
		return nil, fmt.Errorf("read stored data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && isStoredDataFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return &artifact.ListResponse{FileNames: names}, nil
}

// Load returns a CSV file as a text part.
func (s *StoredDataArtifactService) Load(ctx context.Context, req *artifact.LoadRequest) (*artifact.LoadResponse, error) {
	fullPath, err := s.resolve(req.FileName)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.FileName, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s is not UTF-8 text", req.FileName)
	}
	s.logger.Debug("loaded stored file", zap.String("file", req.FileName), zap.Int("bytes", len(content)))

	return &artifact.LoadResponse{Part: genai.NewPartFromText(string(content))}, nil
}

// Versions reports version 1 for stored files that exist. Files are replaced
// in place, so there is never more than one.
func (s *StoredDataArtifactService) Versions(ctx context.Context, req *artifact.VersionsRequest) (*artifact.VersionsResponse, error) {
	fullPath, err := s.resolve(req.FileName)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(fullPath); err == nil {
		return &artifact.VersionsResponse{Versions: []int64{1}}, nil
	}
	return &artifact.VersionsResponse{Versions: []int64{}}, nil
}

// Save, Delete and DeleteAll always fail with ErrReadOnly.
func (s *StoredDataArtifactService) Save(ctx context.Context, req *artifact.SaveRequest) (*artifact.SaveResponse, error) {
	return nil, ErrReadOnly
}

func (s *StoredDataArtifactService) Delete(ctx context.Context, req *artifact.DeleteRequest) error {
	return ErrReadOnly
}

func (s *StoredDataArtifactService) DeleteAll(ctx context.Context, req *artifact.DeleteRequest) error {
	return ErrReadOnly
}
