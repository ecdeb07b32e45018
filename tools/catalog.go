package tools

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog remembers the tools registered on the MCP server so they can be
// listed outside of an MCP session.
type Catalog struct {
	tools map[string]*ToolInfo
	mu    sync.RWMutex
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func NewCatalog() *Catalog {
	return &Catalog{tools: make(map[string]*ToolInfo)}
}

// Register adds a tool, rejecting duplicate names.
func (c *Catalog) Register(name, description string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[name]; exists {
		return fmt.Errorf("tool name collision: %s already registered", name)
	}
	c.tools[name] = &ToolInfo{Name: name, Description: description}
	return nil
}

// Get returns the tool registered under name.
func (c *Catalog) Get(name string) (*ToolInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tool, ok := c.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	out := *tool
	return &out, nil
}

// List returns all tools sorted by name.
func (c *Catalog) List() []ToolInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]ToolInfo, 0, len(c.tools))
	for _, tool := range c.tools {
		tools = append(tools, *tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}
