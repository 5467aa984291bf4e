package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

var documentExtensions = []string{".yaml", ".yml", ".json"}

// FileSource reads one document per file from a directory. The file name
// without extension is the document name.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Dir is the directory holding the document files.
func (s *FileSource) Dir() string {
	return s.dir
}

func (s *FileSource) ListDocuments(ctx context.Context) ([]proposal.DocumentSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading document directory %s: %w", s.dir, err)
	}

	summaries := []proposal.DocumentSummary{}
	seen := map[string]bool{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, ok := documentName(entry.Name())
		if entry.IsDir() || !ok || seen[name] {
			continue
		}
		seen[name] = true

		doc, err := s.readDocument(filepath.Join(s.dir, entry.Name()), name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, doc.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (s *FileSource) GetDocument(ctx context.Context, name string) (*proposal.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, name)
	}

	for _, ext := range documentExtensions {
		path := filepath.Join(s.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return s.readDocument(path, name)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
}

func (s *FileSource) readDocument(path, name string) (*proposal.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}

	var doc proposal.Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}

	doc.Name = name
	return &doc, nil
}

// documentName returns the document name of a file, or false when the file
// is not a document.
func documentName(file string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range documentExtensions {
		if ext == e {
			return strings.TrimSuffix(file, filepath.Ext(file)), true
		}
	}
	return "", false
}
