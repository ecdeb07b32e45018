package tools

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const GreetToolName = "greet_user"

type GreetArgs struct {
	Name string `json:"name,omitempty" jsonschema:"The name of the user to greet (optional)"`
}

// Greeting returns the greeting for name; an empty name gets the generic one.
func Greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Hello! How are you doing today?"
	}
	return "Hello, " + name + "! Nice to meet you!"
}

func (r *registrar) greet(ctx context.Context, req *mcp.CallToolRequest, args GreetArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	text := Greeting(args.Name)
	r.observe(GreetToolName, args.Name, start, nil)

	return textResult(text), nil, nil
}
