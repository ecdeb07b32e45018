package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/mcp-city-time/history"
	"github.com/user/mcp-city-time/telemetry"
	"github.com/user/mcp-city-time/timeservice"
)

type fakeLookup struct {
	mu    sync.Mutex
	raw   string
	err   error
	mode  timeservice.PlatformMode
	calls []string
}

func (f *fakeLookup) Lookup(_ context.Context, city string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, city)
	return f.raw, f.err
}

func (f *fakeLookup) Mode() timeservice.PlatformMode { return f.mode }

type memoryHistory struct {
	mu      sync.Mutex
	records []history.Record
	err     error
}

func (m *memoryHistory) Save(_ context.Context, r *history.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *r)
	return nil
}

func connect(t *testing.T, deps Deps) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server, _ := NewServer(deps)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		cs.Close()
		ss.Wait()
	})
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Hello, Ada! Nice to meet you!", Greeting("Ada"))
	assert.Equal(t, "Hello, Ada! Nice to meet you!", Greeting("  Ada "))
	assert.Equal(t, "Hello! How are you doing today?", Greeting(""))
	assert.Equal(t, "Hello! How are you doing today?", Greeting("   "))
}

func TestListTools(t *testing.T) {
	cs := connect(t, Deps{Lookup: &fakeLookup{}})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{GreetToolName, CityTimeToolName}, names)
}

func TestGreetTool(t *testing.T) {
	stats := telemetry.NewStatsTracker()
	cs := connect(t, Deps{Lookup: &fakeLookup{}, Stats: stats})

	text, isErr := callText(t, cs, GreetToolName, map[string]any{"name": "Grace"})
	assert.False(t, isErr)
	assert.Equal(t, "Hello, Grace! Nice to meet you!", text)

	text, _ = callText(t, cs, GreetToolName, map[string]any{})
	assert.Equal(t, "Hello! How are you doing today?", text)

	assert.Equal(t, int64(2), stats.GetStats().CallsByTool[GreetToolName])
}

func TestCityTimeTool(t *testing.T) {
	lookup := &fakeLookup{raw: "\"14:32\"\n\"Europe/Paris timezone\"\n", mode: timeservice.DigStyle}
	stats := telemetry.NewStatsTracker()
	trace := telemetry.NewTraceRecorder(10)
	store := &memoryHistory{}
	cs := connect(t, Deps{Lookup: lookup, Stats: stats, Trace: trace, History: store})

	text, isErr := callText(t, cs, CityTimeToolName, map[string]any{"city": " paris "})
	require.False(t, isErr)
	assert.Equal(t, "🕐 Time information for  paris :\n\nCurrent Time: 14:32\nTimezone: Europe/Paris timezone", text)
	assert.Equal(t, []string{"paris"}, lookup.calls)

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "paris", rec.City)
	assert.Equal(t, "dig", rec.Platform)
	assert.Equal(t, "14:32", rec.CurrentTime)
	assert.Equal(t, "Europe/Paris timezone", rec.Timezone)
	assert.Empty(t, rec.Error)

	snap := stats.GetStats()
	assert.Equal(t, int64(1), snap.CallsByTool[CityTimeToolName])
	require.Len(t, snap.TopCities, 1)
	assert.Equal(t, "paris", snap.TopCities[0].Name)

	events := trace.List()
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].Outcome)
	assert.Equal(t, "dig", events[0].Platform)
}

func TestCityTimeToolShowsCityAsTyped(t *testing.T) {
	lookup := &fakeLookup{raw: "\"10:15 PM\"\n", mode: timeservice.DigStyle}
	cs := connect(t, Deps{Lookup: lookup})

	text, isErr := callText(t, cs, CityTimeToolName, map[string]any{"city": "new york"})
	require.False(t, isErr)
	assert.Equal(t, "🕐 Time information for New york:\n\nCurrent Time: 10:15 PM", text)
	assert.Equal(t, []string{"new york"}, lookup.calls)
}

func TestCityTimeToolEmptyOutput(t *testing.T) {
	cs := connect(t, Deps{Lookup: &fakeLookup{raw: "\n"}})

	text, isErr := callText(t, cs, CityTimeToolName, map[string]any{"city": "Atlantis"})
	assert.False(t, isErr)
	assert.Equal(t, "No time information available for Atlantis", text)
}

func TestCityTimeToolEmptyCity(t *testing.T) {
	lookup := &fakeLookup{}
	stats := telemetry.NewStatsTracker()
	cs := connect(t, Deps{Lookup: lookup, Stats: stats})

	text, isErr := callText(t, cs, CityTimeToolName, map[string]any{"city": "   "})
	assert.True(t, isErr)
	assert.Equal(t, "city is required", text)
	assert.Empty(t, lookup.calls)
	assert.Equal(t, int64(1), stats.GetStats().FailedCalls)
}

func TestCityTimeToolLookupErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  fmt.Errorf("%w after 10s", timeservice.ErrLookupTimeout),
			want: "Error fetching time for paris: the time service did not respond in time",
		},
		{
			name: "invalid",
			err:  fmt.Errorf("%w: %q", timeservice.ErrInvalidCity, "paris"),
			want: "Error fetching time for paris: city names may only contain letters, digits, dots and hyphens",
		},
		{
			name: "failed",
			err:  fmt.Errorf("%w: exit status 9", timeservice.ErrLookupFailed),
			want: "Error fetching time for paris: time lookup failed: exit status 9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryHistory{}
			trace := telemetry.NewTraceRecorder(10)
			cs := connect(t, Deps{Lookup: &fakeLookup{err: tt.err}, History: store, Trace: trace})

			text, isErr := callText(t, cs, CityTimeToolName, map[string]any{"city": "paris"})
			assert.True(t, isErr)
			assert.Equal(t, tt.want, text)

			require.Len(t, store.records, 1)
			assert.Equal(t, tt.err.Error(), store.records[0].Error)
			assert.Equal(t, "error", trace.List()[0].Outcome)
		})
	}
}

func TestCityTimeToolHistoryFailureDoesNotFailCall(t *testing.T) {
	store := &memoryHistory{err: errors.New("disk full")}
	cs := connect(t, Deps{Lookup: &fakeLookup{raw: "\"10:15 PM\""}, History: store})

	text, isErr := callText(t, cs, CityTimeToolName, map[string]any{"city": "tokyo"})
	assert.False(t, isErr)
	assert.Contains(t, text, "Current Time: 10:15 PM")
}

func TestNewServerCatalog(t *testing.T) {
	_, catalog := NewServer(Deps{Lookup: &fakeLookup{}})

	assert.Equal(t, 2, catalog.Count())
	tool, err := catalog.Get(CityTimeToolName)
	require.NoError(t, err)
	assert.Contains(t, tool.Description, "dns.toys")
}
