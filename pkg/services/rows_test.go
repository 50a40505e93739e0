package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredData_Rows(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("region,revenue\nnorth,10\nsouth,20,extra\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), nil, 0o644))
	svc := NewStoredDataArtifactService(dir, nil)

	rows, err := svc.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{File: "sales.csv", Line: 1, Text: "region: north, revenue: 10"},
		{File: "sales.csv", Line: 2, Text: "region: south, revenue: 20, column_3: extra"},
	}, rows)
}

func TestStoredData_RowsCapped(t *testing.T) {
	dir := t.TempDir()
	content := []byte("n\n")
	for i := 0; i < MaxRows+5; i++ {
		content = append(content, "1\n"...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("n\n2\n"), 0o644))
	svc := NewStoredDataArtifactService(dir, nil)

	rows, err := svc.Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, MaxRows)
	assert.Equal(t, "a.csv", rows[len(rows)-1].File)
}

func TestStoredData_RowsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("a,b\n\"unterminated\n"), 0o644))

	_, err := NewStoredDataArtifactService(dir, nil).Rows(context.Background())
	require.Error(t, err)
}
