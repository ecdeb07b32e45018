package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/mcp-city-time/history"
	"github.com/user/mcp-city-time/timeservice"
)

const CityTimeToolName = "get_city_time"

type CityTimeArgs struct {
	City string `json:"city" jsonschema:"The city to look up, for example Mumbai or New York"`
}

func (r *registrar) cityTime(ctx context.Context, req *mcp.CallToolRequest, args CityTimeArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	city := strings.TrimSpace(args.City)
	if city == "" {
		r.observe(CityTimeToolName, args.City, start, timeservice.ErrEmptyCity)
		return errorResult("city is required"), nil, nil
	}

	mode := r.Lookup.Mode()
	rec := &history.Record{
		ID:        uuid.NewString(),
		City:      city,
		Platform:  mode.String(),
		CreatedAt: start,
	}

	raw, err := r.Lookup.Lookup(ctx, city)
	if err != nil {
		rec.Error = err.Error()
		rec.Duration = time.Since(start)
		r.save(ctx, rec)
		r.observe(CityTimeToolName, city, start, err)
		return errorResult(lookupErrorMessage(city, err)), nil, nil
	}

	// The report shows the city exactly as the caller typed it.
	report := timeservice.ParseReport(raw, args.City, mode)
	rec.CurrentTime = report.CurrentTime
	rec.Timezone = report.Timezone
	rec.AdditionalInfo = report.AdditionalInfo
	rec.RawFallback = report.RawFallbackUsed
	rec.Raw = raw
	rec.Duration = time.Since(start)
	r.save(ctx, rec)

	if r.Stats != nil {
		r.Stats.RecordCity(city)
	}
	r.observe(CityTimeToolName, city, start, nil)

	return textResult(report.Render(args.City)), nil, nil
}

func lookupErrorMessage(city string, err error) string {
	switch {
	case errors.Is(err, timeservice.ErrInvalidCity):
		return fmt.Sprintf("Error fetching time for %s: city names may only contain letters, digits, dots and hyphens", city)
	case errors.Is(err, timeservice.ErrLookupTimeout):
		return fmt.Sprintf("Error fetching time for %s: the time service did not respond in time", city)
	default:
		return fmt.Sprintf("Error fetching time for %s: %v", city, err)
	}
}

// save persists rec; storage problems never fail the tool call.
func (r *registrar) save(ctx context.Context, rec *history.Record) {
	if r.History == nil {
		return
	}
	if err := r.History.Save(context.WithoutCancel(ctx), rec); err != nil {
		r.Logger.Warn("failed to record lookup %s: %v", rec.ID, err)
	}
}
