package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/adk/artifact"
)

// MaxRows caps how many data rows Rows returns across all stored files.
const MaxRows = 1000

// Row is one data row of a stored CSV file rendered as "column: value" pairs.
type Row struct {
	File string `json:"file"`
	// Line is the 1-based record number, header excluded.
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Rows reads every stored CSV file and returns its data rows in file order,
// at most MaxRows of them.
func (s *StoredDataArtifactService) Rows(ctx context.Context) ([]Row, error) {
	list, err := s.List(ctx, &artifact.ListRequest{})
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, name := range list.FileNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileRows, err := s.readRows(name, MaxRows-len(rows))
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
		if len(rows) >= MaxRows {
			s.logger.Warn("stored data truncated", zap.Int("max_rows", MaxRows), zap.String("last_file", name))
			break
		}
	}
	return rows, nil
}

func (s *StoredDataArtifactService) readRows(name string, limit int) ([]Row, error) {
	f, err := os.Open(filepath.Join(s.rootDir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	var rows []Row
	for line := 1; len(rows) < limit; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		rows = append(rows, Row{File: name, Line: line, Text: renderRecord(header, record)})
	}
	return rows, nil
}

func renderRecord(header, record []string) string {
	fields := make([]string, 0, len(record))
	for i, v := range record {
		col := fmt.Sprintf("column_%d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			col = strings.TrimSpace(header[i])
		}
		fields = append(fields, col+": "+strings.TrimSpace(v))
	}
	return strings.Join(fields, ", ")
}
