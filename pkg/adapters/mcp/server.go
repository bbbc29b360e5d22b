// Package mcp exposes the mission pipeline as an MCP server so agent
// frontends can validate and compile missions and run preflight checks over
// the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/compiler"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/gate"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/schema"
)

// ValidateResponse is the structured output of the validate_mission tool.
type ValidateResponse struct {
	Valid    bool     `json:"valid" jsonschema_description:"Whether the mission passed validation"`
	Errors   []string `json:"errors,omitempty" jsonschema_description:"Every rule violation found"`
	Warnings []string `json:"warnings,omitempty" jsonschema_description:"Non-fatal findings"`
}

// PreflightResponse is the structured output of the preflight_check tool.
type PreflightResponse struct {
	Allowed bool          `json:"allowed" jsonschema_description:"Whether every gate passed"`
	Results []gate.Result `json:"results" jsonschema_description:"One verdict per gate"`
}

// Server wraps the mission pipeline and exposes it as an MCP server.
type Server struct {
	compiler  *compiler.Compiler
	ledger    *gate.Ledger
	store     ports.ManifestStore
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server around the pipeline components.
func NewServer(c *compiler.Compiler, ledger *gate.Ledger, store ports.ManifestStore) *Server {
	s := &Server{
		compiler:  c,
		ledger:    ledger,
		store:     store,
		mcpServer: server.NewMCPServer("brain-mcp", strings.TrimSpace(brain.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: validate_mission
	validateTool := mcp.NewTool("validate_mission",
		mcp.WithDescription("Validate a mission definition (YAML or JSON) and report every finding."),
		mcp.WithString("mission", mcp.Required(), mcp.Description("The serialized mission document")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: compile_mission
	compileTool := mcp.NewTool("compile_mission",
		mcp.WithDescription("Compile a mission into a deterministic execution plan plus its mandate."),
		mcp.WithString("mission", mcp.Required(), mcp.Description("The serialized mission document")),
		mcp.WithString("seed", mcp.Description("Optional task-ID seed; defaults to the mission_id")),
		mcp.WithOutputSchema[compiler.Result](),
	)
	s.mcpServer.AddTool(compileTool, mcp.NewStructuredToolHandler(s.handleCompile))

	// TOOL: preflight_check
	preflightTool := mcp.NewTool("preflight_check",
		mcp.WithDescription("Run every policy gate for a proposed specialist invocation."),
		mcp.WithString("specialist", mcp.Required(), mcp.Description("Specialist identifier, e.g. iam-qa")),
		mcp.WithString("risk_tier", mcp.Required(), mcp.Description("Risk tier R0..R4")),
		mcp.WithString("mandate", mcp.Description("JSON-serialized mandate; omit for unrestricted tiers")),
		mcp.WithString("tools", mcp.Description("JSON array of tool names the specialist intends to use")),
		mcp.WithOutputSchema[PreflightResponse](),
	)
	s.mcpServer.AddTool(preflightTool, mcp.NewStructuredToolHandler(s.handlePreflight))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	doc, _ := args["mission"].(string)

	mission, err := schema.ParseMission([]byte(doc))
	if err != nil {
		return ValidateResponse{Valid: false, Errors: []string{err.Error()}}, nil
	}

	res := s.compiler.Compile(mission)
	return ValidateResponse{
		Valid:    res.Success,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}, nil
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (compiler.Result, error) {
	doc, _ := args["mission"].(string)

	mission, err := schema.ParseMission([]byte(doc))
	if err != nil {
		return compiler.Result{Success: false, Errors: []string{err.Error()}}, nil
	}

	c := s.compiler
	if seed, ok := args["seed"].(string); ok && seed != "" {
		c = compiler.New(compiler.WithSeed(seed))
	}
	return c.Compile(mission), nil
}

func (s *Server) handlePreflight(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PreflightResponse, error) {
	specialist, _ := args["specialist"].(string)
	tierStr, _ := args["risk_tier"].(string)

	tier, err := domain.ParseRiskTier(tierStr)
	if err != nil {
		return PreflightResponse{}, err
	}

	var mandate *domain.Mandate
	if raw, ok := args["mandate"].(string); ok && raw != "" {
		mandate = &domain.Mandate{}
		if err := json.Unmarshal([]byte(raw), mandate); err != nil {
			return PreflightResponse{}, fmt.Errorf("invalid mandate JSON: %w", err)
		}
	}

	var tools []string
	if raw, ok := args["tools"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &tools); err != nil {
			return PreflightResponse{}, fmt.Errorf("invalid tools JSON: %w", err)
		}
	}

	results, err := s.ledger.Preflight(ctx, gate.CheckRequest{
		Specialist: specialist,
		RiskTier:   tier,
		Mandate:    mandate,
		Tools:      tools,
	})
	if err != nil {
		return PreflightResponse{}, err
	}

	return PreflightResponse{
		Allowed: gate.Allowed(results),
		Results: results,
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: brain://bundles
	s.mcpServer.AddResource(mcp.NewResource("brain://bundles", "Evidence Bundle Index",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list evidence bundles: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "brain://bundles",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
