package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/proposal"
	"github.com/bascanada/proposalviewer/pkg/server"
	"github.com/bascanada/proposalviewer/pkg/source"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Starts a MCP server",
	Long: `Starts a MCP server on stdio, exposing the documents and the filter
evaluator as tools.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		// stdout carries the protocol
		logger.Stdout = false
		onCommandStart(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		catalog, err := openCatalog(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()

		bundle, err := BuildMCPServer(cfg, catalog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		log.Info("serving MCP on stdio")
		if err := mcpserver.ServeStdio(bundle.Server); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

// MCPServerBundle is the MCP server with direct access to its tool handlers.
type MCPServerBundle struct {
	Server       *mcpserver.MCPServer
	ToolHandlers map[string]mcpserver.ToolHandlerFunc
}

// FilterToolResult is the payload of the filter tools.
type FilterToolResult struct {
	Document string      `json:"document"`
	Parsed   string      `json:"parsed"`
	Total    int         `json:"total"`
	Matched  int         `json:"matched"`
	Records  interface{} `json:"records"`
}

// BuildMCPServer registers the proposalviewer tools over src. cfg may be nil.
func BuildMCPServer(cfg *config.Config, src source.Source) (*MCPServerBundle, error) {
	if src == nil {
		return nil, fmt.Errorf("a document source is required")
	}

	var filterOpts []filter.Option
	if cfg != nil {
		filterOpts = server.FilterOptions(cfg)
	}

	s := mcpserver.NewMCPServer(
		"proposalviewer",
		sha1ver,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	bundle := &MCPServerBundle{Server: s, ToolHandlers: map[string]mcpserver.ToolHandlerFunc{}}

	add := func(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
		s.AddTool(tool, handler)
		bundle.ToolHandlers[tool.Name] = handler
	}

	add(mcp.NewTool("list_documents",
		mcp.WithDescription("List the available proposal documents with their project and team member counts."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := src.ListDocuments(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list documents: %v", err)), nil
		}
		return jsonResult(docs)
	})

	add(mcp.NewTool("list_fields",
		mcp.WithDescription("List the fields a filter expression can use for projects or team members, with their aliases and kind."),
		mcp.WithString("kind",
			mcp.Description("Record kind: projects or team. Both when omitted."),
			mcp.Enum(string(proposal.KindProjects), string(proposal.KindTeam)),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kindArg := request.GetString("kind", "")
		if kindArg == "" {
			return jsonResult(map[proposal.RecordKind][]proposal.FieldInfo{
				proposal.KindProjects: proposal.FieldsOf(proposal.KindProjects),
				proposal.KindTeam:     proposal.FieldsOf(proposal.KindTeam),
			})
		}
		kind, err := proposal.ParseKind(kindArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(proposal.FieldsOf(kind))
	})

	filterTool := func(name, description string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithString("document",
				mcp.Description("Document name, see list_documents. Defaults to the current or only document."),
			),
			mcp.WithString("filter",
				mcp.Description("Filter expression, e.g. 'entity:hospital AND year:>=2023 AND NOT commercial'. Empty matches everything."),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of records returned. The matched count is not limited."),
			),
		)
	}

	filterHandler := func(kind proposal.RecordKind) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := resolveDocument(ctx, src, request.GetString("document", ""))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			doc, err := src.GetDocument(ctx, name)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to read document: %v", err)), nil
			}

			text := request.GetString("filter", "")
			limit := request.GetInt("limit", 0)
			result := FilterToolResult{
				Document: doc.Name,
				Parsed:   proposal.Explain(kind, text, filterOpts...).String(),
			}

			if kind == proposal.KindTeam {
				members := proposal.FilterTeamMembers(doc.Team, text, filterOpts...)
				result.Total, result.Matched = len(doc.Team), len(members)
				if limit > 0 && len(members) > limit {
					members = members[:limit]
				}
				result.Records = nonNil(members)
			} else {
				projects := proposal.FilterProjects(doc.Projects, text, filterOpts...)
				result.Total, result.Matched = len(doc.Projects), len(projects)
				if limit > 0 && len(projects) > limit {
					projects = projects[:limit]
				}
				result.Records = nonNil(projects)
			}

			log.Debug("mcp %s %q on %s: %d/%d", kind, text, doc.Name, result.Matched, result.Total)
			return jsonResult(result)
		}
	}

	add(filterTool("filter_projects",
		"Filter the projects of a proposal document. Bare words search name, entity, client, location, country, services and description; field:value, field:>n and (a OR b) AND NOT c are supported."),
		filterHandler(proposal.KindProjects))

	add(filterTool("filter_team_members",
		"Filter the team members of a proposal document. Fields: name, title, bio, skills, experience (accepts ranges such as experience:5-10)."),
		filterHandler(proposal.KindTeam))

	add(mcp.NewTool("explain_filter",
		mcp.WithDescription("Show how a filter expression is parsed, as canonical text and a tree. Use it to check a filter before running it."),
		mcp.WithString("filter", mcp.Required(), mcp.Description("Filter expression to parse")),
		mcp.WithString("kind",
			mcp.Description("Record kind deciding which fields accept ranges: projects (default) or team."),
			mcp.Enum(string(proposal.KindProjects), string(proposal.KindTeam)),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("filter")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind, err := proposal.ParseKind(request.GetString("kind", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		f := proposal.Explain(kind, text, filterOpts...)
		return jsonResult(server.ExplainResponse{Kind: kind, Parsed: f.String(), Filter: f})
	})

	return bundle, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// nonNil keeps empty matches encoded as [] rather than null.
func nonNil[T any](records []T) []T {
	if records == nil {
		return []T{}
	}
	return records
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
