package timeservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"
	"unicode"
)

const (
	DefaultServer  = "dns.toys"
	DefaultZone    = "time"
	DefaultTimeout = 10 * time.Second
)

var cityLabelPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}.-]*$`)

// LookupConfig controls how the external lookup command is built.
type LookupConfig struct {
	Server   string
	Zone     string
	Timeout  time.Duration
	Platform PlatformMode
}

// Lookuper resolves a city's time TXT records by running dig or nslookup.
type Lookuper struct {
	cfg      LookupConfig
	executor Executor
}

// NewLookuper fills zero config values with defaults. A nil executor runs
// real processes.
func NewLookuper(cfg LookupConfig, executor Executor) *Lookuper {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Zone == "" {
		cfg.Zone = DefaultZone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if executor == nil {
		executor = DefaultExecutor{}
	}
	return &Lookuper{cfg: cfg, executor: executor}
}

// Mode reports the output style the configured command produces.
func (l *Lookuper) Mode() PlatformMode {
	return l.cfg.Platform
}

// Lookup runs the platform lookup command for city and returns raw stdout.
func (l *Lookuper) Lookup(ctx context.Context, city string) (string, error) {
	label := SanitizeCity(city)
	if label == "" {
		return "", ErrEmptyCity
	}
	if !cityLabelPattern.MatchString(label) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCity, city)
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	name, args := CommandFor(l.cfg.Platform, label+"."+l.cfg.Zone, l.cfg.Server)
	cmd, err := l.executor.Command(ctx, name, args, AllowlistBins("dig", "nslookup"), NoShellMeta(), NoControlChars())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	var stderr bytes.Buffer
	cmd.SetStderr(&stderr)

	out, err := cmd.Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// A caller deadline shorter than ours fired first.
		if parentErr := parent.Err(); parentErr != nil {
			return "", fmt.Errorf("%w: %v", ErrLookupTimeout, parentErr)
		}
		return "", fmt.Errorf("%w after %s", ErrLookupTimeout, l.cfg.Timeout)
	}
	if err != nil {
		// nslookup exits non-zero on some partial answers that still carry records.
		if len(bytes.TrimSpace(out)) > 0 {
			return string(out), nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %v: %s", ErrLookupFailed, err, msg)
		}
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	return string(out), nil
}

// CommandFor returns the binary and arguments querying host's TXT records.
func CommandFor(mode PlatformMode, host, server string) (string, []string) {
	if mode == NslookupStyle {
		return "nslookup", []string{"-type=txt", host, server}
	}
	return "dig", []string{"+short", "TXT", host, "@" + server}
}

// SanitizeCity lowercases city and strips all whitespace.
func SanitizeCity(city string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, city)
}

// ParsePlatform maps a config value to a PlatformMode. "auto" and "" pick
// nslookup on Windows and dig elsewhere.
func ParsePlatform(value string) (PlatformMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return platformFor(runtime.GOOS), nil
	case "dig":
		return DigStyle, nil
	case "nslookup":
		return NslookupStyle, nil
	default:
		return DigStyle, fmt.Errorf("%w: %s", ErrUnknownPlatform, value)
	}
}

func platformFor(goos string) PlatformMode {
	if goos == "windows" {
		return NslookupStyle
	}
	return DigStyle
}
