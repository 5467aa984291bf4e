package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

var format string

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create an example config file and document",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		configFile, err := writeExample(dir, format)
		if err != nil {
			fmt.Printf("failed to create example: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("created config file: %s\n", configFile)
		fmt.Printf("try it: proposalviewer -c %s filter projects -q 'UK AND year:>=2023'\n", configFile)
	},
}

func exampleDocument() proposal.Document {
	lat, lng := 51.5072, -0.1276
	return proposal.Document{
		Name:  "example",
		Title: "Example Framework Bid",
		Tabs: []proposal.Tab{
			{ID: "projects", Title: "Projects", Kind: proposal.TabProjects},
			{ID: "team", Title: "Team", Kind: proposal.TabTeam},
		},
		Projects: []proposal.Project{
			{Name: "Hospital Tower", Entity: "IPP", Client: "NHS Trust", Location: "London", Country: "UK",
				Value: "1500000", Year: "2024", Services: "Architecture; BIM coordination", Latitude: &lat, Longitude: &lng},
			{Name: "Office Block", Entity: "Commercial Ltd", Location: "Boston", Country: "USA",
				Value: "2300000", Year: "2021", Services: "Interior design"},
			{Name: "Riverside Clinic", Client: "Acme-Corp", Location: "Leeds", Country: "UK",
				Value: "850000", Year: "2023", Description: "Outpatient clinic on a flood plain"},
		},
		Team: []proposal.TeamMember{
			{Name: "Jane Doe", Title: "Senior Architect", YearsExperience: 12, KeySkills: "Revit, BIM"},
			{Name: "John Roe", Title: "Junior Engineer", YearsExperience: 3, KeySkills: "AutoCAD"},
		},
	}
}

// writeExample writes a config with one file source and an example document
// under dir and returns the config path.
func writeExample(dir, format string) (string, error) {
	docsDir, err := filepath.Abs(filepath.Join(dir, "documents"))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		return "", err
	}

	defaultConfig := config.Config{
		Sources: config.Sources{
			"local": {Type: config.SourceFile, Path: docsDir},
		},
		Cache: config.CacheSettings{TTL: "30s"},
	}
	doc := exampleDocument()

	var configData, docData []byte
	switch format {
	case "json":
		if configData, err = json.MarshalIndent(defaultConfig, "", "  "); err == nil {
			docData, err = json.MarshalIndent(doc, "", "  ")
		}
	case "yaml":
		if configData, err = yaml.Marshal(defaultConfig); err == nil {
			docData, err = yaml.Marshal(doc)
		}
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal example: %w", err)
	}

	if err := os.WriteFile(filepath.Join(docsDir, doc.Name+"."+format), docData, 0644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	configFile := filepath.Join(dir, "config."+format)
	if err := os.WriteFile(configFile, configData, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

func init() {
	initCmd.Flags().StringVar(&format, "format", "yaml", "config file format (json or yaml)")
	rootCmd.AddCommand(initCmd)
}
