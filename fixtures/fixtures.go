package fixtures

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/user/mcp-city-time/timeservice"
)

// Canned dns.toys answers as printed by `dig +short TXT` and
// `nslookup -type=txt`.
const (
	DigMumbai = "\"Mumbai (Asia/Kolkata)\"\n\"Fri, 16 Oct 2026 19:02:11 +0530\"\n"

	DigTokyo = "\"10:15 PM\"\n\"Asia/Tokyo timezone\"\n\"JST\"\n"

	NslookupMumbai = `Server:		dns.toys
Address:	204.48.22.144#53

Non-authoritative answer:
mumbai.time	text =

	"Mumbai (Asia/Kolkata)"
	"Fri, 16 Oct 2026 19:02:11 +0530"

Authoritative answers can be found from:
`

	// NslookupNoRecords has no quoted record lines.
	NslookupNoRecords = `Server:		dns.toys
Address:	204.48.22.144#53

** server can't find atlantis.time: NXDOMAIN
`
)

// Executor answers lookups per queried host from answers, keyed like
// "mumbai.time". Unknown hosts fail the way dig does without a response.
type Executor struct {
	mu      sync.Mutex
	answers map[string]string
	hosts   []string
}

func NewExecutor(answers map[string]string) *Executor {
	return &Executor{answers: answers}
}

func (e *Executor) Command(ctx context.Context, name string, args []string, validators ...timeservice.ExecValidator) (timeservice.Command, error) {
	spec := timeservice.ExecSpec{Name: name, Args: args}
	for _, v := range validators {
		if err := v(spec); err != nil {
			return nil, err
		}
	}

	host := HostOf(spec)
	e.mu.Lock()
	e.hosts = append(e.hosts, host)
	answer, ok := e.answers[host]
	e.mu.Unlock()

	if !ok {
		return &timeservice.MockCommand{
			Spec:       spec,
			OutputErr:  errors.New("exit status 9"),
			StderrData: []byte(";; connection timed out; no servers could be reached\n"),
		}, nil
	}
	return &timeservice.MockCommand{Spec: spec, OutputData: []byte(answer)}, nil
}

// Hosts returns every host queried so far, in order.
func (e *Executor) Hosts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.hosts...)
}

// HostOf extracts the queried name from a dig or nslookup invocation.
func HostOf(spec timeservice.ExecSpec) string {
	for _, arg := range spec.Args {
		if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "@") || arg == "TXT" {
			continue
		}
		return arg
	}
	return ""
}

// TempDBPath returns a SQLite file path inside a per-test directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}
