package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/proposal"
	"github.com/bascanada/proposalviewer/pkg/source"
)

// loadConfig loads the config at path and returns it with the resolved path.
func loadConfig(path string) (*config.Config, string, error) {
	resolved := config.ResolvePath(path)

	cfg, err := config.Load(resolved)
	if err != nil {
		errorMsg := "failed to load config"
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
			errorMsg = "configuration file not found (run 'proposalviewer configure' or 'proposalviewer init')"
		case errors.Is(err, config.ErrConfigParse):
			errorMsg = "invalid configuration file format"
		case errors.Is(err, config.ErrNoSources):
			errorMsg = "configuration missing 'sources' section"
		case errors.Is(err, config.ErrInvalidSource), errors.Is(err, config.ErrUnknownSource):
			errorMsg = "invalid source configuration"
		}
		return nil, resolved, fmt.Errorf("%s: %w", errorMsg, err)
	}

	log.Debug("loaded config %s with %d sources", resolved, len(cfg.Sources))
	return cfg, resolved, nil
}

func openCatalog(ctx context.Context, cfg *config.Config) (*source.Catalog, error) {
	catalog, err := source.NewCatalog(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources: %w", err)
	}
	return catalog, nil
}

// resolveDocument picks the document to work on: the explicit name, then
// the current document of the state file, then the only available document.
func resolveDocument(ctx context.Context, src source.Source, name string) (string, error) {
	if name == "" {
		if state, err := config.LoadState(); err == nil {
			name = state.CurrentDocument
		} else {
			log.Warn("failed to read state: %v", err)
		}
	}

	docs, err := src.ListDocuments(ctx)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}

	if name == "" {
		switch len(names) {
		case 0:
			return "", errors.New("no documents available in the configured sources")
		case 1:
			return names[0], nil
		}
		return "", fmt.Errorf("no document selected, use -d or 'proposalviewer use'. Available: %s", strings.Join(names, ", "))
	}

	for _, n := range names {
		if n == name {
			return name, nil
		}
	}

	// Unlisted names may still resolve, remote sources list lazily
	if _, err := src.GetDocument(ctx, name); err == nil {
		return name, nil
	}

	msg := fmt.Sprintf("document '%s' not found", name)
	if suggestions := suggestSimilar(name, names, 3); len(suggestions) > 0 {
		msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(suggestions, ", "))
	}
	return "", fmt.Errorf("%w: %s", source.ErrDocumentNotFound, msg)
}

// loadDocument loads the config, opens the sources and reads the selected
// document.
func loadDocument(ctx context.Context, name string) (*proposal.Document, *config.Config, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer catalog.Close()

	name, err = resolveDocument(ctx, catalog, name)
	if err != nil {
		return nil, nil, err
	}

	doc, err := catalog.GetDocument(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return doc, cfg, nil
}
