package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeDocuments(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	yamlData, err := yaml.Marshal(sampleDocument("ignored"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme-2024.yaml"), yamlData, 0600))

	jsonData, err := json.Marshal(sampleDocument("beta"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.json"), jsonData, 0600))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a document"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.yaml"), 0750))
	return dir
}

func TestFileSource_ListDocuments(t *testing.T) {
	src := NewFileSource(writeDocuments(t))

	summaries, err := src.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "acme-2024", summaries[0].Name)
	assert.Equal(t, "Acme Healthcare Framework", summaries[0].Title)
	assert.Equal(t, 3, summaries[0].Tabs)
	assert.Equal(t, 2, summaries[0].Projects)
	assert.Equal(t, 2, summaries[0].TeamMembers)
	assert.Equal(t, "beta", summaries[1].Name)
}

func TestFileSource_GetDocument(t *testing.T) {
	src := NewFileSource(writeDocuments(t))

	doc, err := src.GetDocument(context.Background(), "acme-2024")
	require.NoError(t, err)
	assert.Equal(t, "acme-2024", doc.Name)
	assert.Equal(t, "Hospital Tower", doc.Projects[0].Name)
	require.NotNil(t, doc.Projects[0].Latitude)
	assert.InDelta(t, 51.5072, *doc.Projects[0].Latitude, 1e-9)
	assert.Equal(t, 4.5, doc.Team[1].YearsExperience)

	_, err = src.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = src.GetDocument(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing")).ListDocuments(context.Background())
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("tabs: [unterminated"), 0600))
	_, err = NewFileSource(dir).GetDocument(context.Background(), "broken")
	assert.ErrorContains(t, err, "parsing document")
}
