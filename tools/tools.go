// Package tools registers the greeting and city-time MCP tools.
package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/mcp-city-time/history"
	"github.com/user/mcp-city-time/logging"
	"github.com/user/mcp-city-time/telemetry"
	"github.com/user/mcp-city-time/timeservice"
)

const (
	ServerName    = "city-time"
	ServerVersion = "1.0.0"
)

// TimeLookup fetches raw TXT output for a city.
type TimeLookup interface {
	Lookup(ctx context.Context, city string) (string, error)
	Mode() timeservice.PlatformMode
}

// HistoryStore persists lookups. *history.Store satisfies it.
type HistoryStore interface {
	Save(ctx context.Context, r *history.Record) error
}

// Deps are the collaborators shared by the tool handlers. Lookup and Logger
// are required; the rest may be nil.
type Deps struct {
	Logger  *logging.Logger
	Lookup  TimeLookup
	Stats   *telemetry.StatsTracker
	Trace   *telemetry.TraceRecorder
	History HistoryStore
}

type registrar struct {
	Deps
	catalog *Catalog
}

// NewServer builds an MCP server with every tool registered, and the catalog
// describing them.
func NewServer(deps Deps) (*mcp.Server, *Catalog) {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	r := &registrar{Deps: deps, catalog: NewCatalog()}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{HasTools: true})

	addTool(server, r.catalog, &mcp.Tool{
		Name:        GreetToolName,
		Description: "Greets the user with a friendly message",
	}, r.greet)

	addTool(server, r.catalog, &mcp.Tool{
		Name:        CityTimeToolName,
		Description: "Looks up the current time in a city using the dns.toys time service",
	}, r.cityTime)

	return server, r.catalog
}

func addTool[In any](server *mcp.Server, catalog *Catalog, tool *mcp.Tool, handler mcp.ToolHandlerFor[In, any]) {
	if err := catalog.Register(tool.Name, tool.Description); err != nil {
		panic(err)
	}
	mcp.AddTool(server, tool, handler)
}

// observe feeds stats and trace for a finished call.
func (r *registrar) observe(tool, input string, start time.Time, err error) {
	elapsed := time.Since(start)
	if r.Stats != nil {
		r.Stats.RecordCall(tool, err)
	}

	event := telemetry.TraceEvent{
		Tool:     tool,
		Input:    input,
		Outcome:  "ok",
		Duration: elapsed,
	}
	if tool == CityTimeToolName && r.Lookup != nil {
		event.Platform = r.Lookup.Mode().String()
	}
	if err != nil {
		event.Outcome = "error"
		event.Detail = err.Error()
		r.Logger.Warn("%s failed after %s: %v", tool, elapsed, err)
	} else {
		r.Logger.Debug("%s completed in %s", tool, elapsed)
	}
	if r.Trace != nil {
		r.Trace.Add(event)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}
