// Package telemetry keeps in-process counters and a recent-call trace for the
// MCP tools.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// StatsTracker counts tool calls, failures and looked-up cities.
type StatsTracker struct {
	callsTotal     int64
	failedTotal    int64
	callsByTool    map[string]int64
	failuresByTool map[string]int64
	cities         map[string]int64

	// YYYY-MM-DD -> stats
	dailyStats map[string]*DailyStats

	startTime time.Time
	now       func() time.Time
	mu        sync.RWMutex
}

// DailyStats tracks stats for a single day.
type DailyStats struct {
	Date        string           `json:"date"`
	Calls       int64            `json:"calls"`
	FailedCalls int64            `json:"failed_calls"`
	CallsByTool map[string]int64 `json:"calls_by_tool"`
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{
		callsByTool:    make(map[string]int64),
		failuresByTool: make(map[string]int64),
		cities:         make(map[string]int64),
		dailyStats:     make(map[string]*DailyStats),
		startTime:      time.Now(),
		now:            time.Now,
	}
}

// RecordCall records one tool invocation; a non-nil err counts as a failure.
func (st *StatsTracker) RecordCall(tool string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.callsTotal++
	st.callsByTool[tool]++

	today := st.today()
	today.Calls++
	today.CallsByTool[tool]++

	if err != nil {
		st.failedTotal++
		st.failuresByTool[tool]++
		today.FailedCalls++
	}
}

// RecordCity counts a successful lookup for city, case-insensitively.
func (st *StatsTracker) RecordCity(city string) {
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.cities[key]++
}

func (st *StatsTracker) today() *DailyStats {
	date := st.now().Format("2006-01-02")
	if st.dailyStats[date] == nil {
		st.dailyStats[date] = &DailyStats{
			Date:        date,
			CallsByTool: make(map[string]int64),
		}
	}
	return st.dailyStats[date]
}

// GetStats returns the current aggregate statistics.
func (st *StatsTracker) GetStats() StatsSnapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	successRate := 0.0
	if st.callsTotal > 0 {
		successRate = float64(st.callsTotal-st.failedTotal) / float64(st.callsTotal) * 100
	}

	return StatsSnapshot{
		Timestamp:      st.now().Unix(),
		TotalCalls:     st.callsTotal,
		FailedCalls:    st.failedTotal,
		SuccessRate:    successRate,
		CallsByTool:    copyMap(st.callsByTool),
		FailuresByTool: copyMap(st.failuresByTool),
		TopCities:      topN(st.cities, 5),
		Uptime:         st.now().Sub(st.startTime).Seconds(),
	}
}

// GetDailyStats returns a copy of the stats for date, or nil.
func (st *StatsTracker) GetDailyStats(date string) *DailyStats {
	st.mu.RLock()
	defer st.mu.RUnlock()

	stats, ok := st.dailyStats[date]
	if !ok {
		return nil
	}
	out := *stats
	out.CallsByTool = copyMap(stats.CallsByTool)
	return &out
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func topN(counts map[string]int64, limit int) []CountStat {
	stats := make([]CountStat, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, CountStat{Name: name, Count: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})

	if len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// StatsSnapshot represents a snapshot of current statistics.
type StatsSnapshot struct {
	Timestamp      int64            `json:"timestamp"`
	TotalCalls     int64            `json:"total_calls"`
	FailedCalls    int64            `json:"failed_calls"`
	SuccessRate    float64          `json:"success_rate"`
	CallsByTool    map[string]int64 `json:"calls_by_tool"`
	FailuresByTool map[string]int64 `json:"failures_by_tool"`
	TopCities      []CountStat      `json:"top_cities"`
	Uptime         float64          `json:"uptime_seconds"`
}

type CountStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
