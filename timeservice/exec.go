package timeservice

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// execCommandContext is a seam for tests to stub out command creation.
var execCommandContext = exec.CommandContext

// Command is a single prepared lookup process.
type Command interface {
	Output() ([]byte, error)
	SetStderr(w io.Writer)
}

// Executor creates commands for execution.
type Executor interface {
	Command(ctx context.Context, name string, args []string, validators ...ExecValidator) (Command, error)
}

type realCommand struct {
	cmd *exec.Cmd
}

func (c *realCommand) Output() ([]byte, error) { return c.cmd.Output() }
func (c *realCommand) SetStderr(w io.Writer)   { c.cmd.Stderr = w }

// DefaultExecutor runs commands with os/exec and no shell.
type DefaultExecutor struct{}

func (DefaultExecutor) Command(ctx context.Context, name string, args []string, validators ...ExecValidator) (Command, error) {
	if err := validate(ExecSpec{Name: name, Args: args}, validators); err != nil {
		return nil, err
	}
	return &realCommand{cmd: execCommandContext(ctx, name, args...)}, nil
}

// ExecSpec describes a command before it is created.
type ExecSpec struct {
	Name string
	Args []string
}

type ExecValidator func(ExecSpec) error

func validate(spec ExecSpec, validators []ExecValidator) error {
	for _, v := range validators {
		if err := v(spec); err != nil {
			return err
		}
	}
	return nil
}

func AllowlistBins(allowed ...string) ExecValidator {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	return func(spec ExecSpec) error {
		if _, ok := set[spec.Name]; !ok {
			return errors.New("exec: binary not allowed")
		}
		return nil
	}
}

func NoShellMeta() ExecValidator {
	return func(spec ExecSpec) error {
		for _, arg := range spec.Args {
			if strings.ContainsAny(arg, "&|;<>()$`\\\"'") {
				return errors.New("exec: shell metacharacters not allowed")
			}
		}
		return nil
	}
}

func NoControlChars() ExecValidator {
	return func(spec ExecSpec) error {
		for _, arg := range spec.Args {
			if strings.ContainsAny(arg, "\r\n\t\x00") {
				return errors.New("exec: control characters not allowed")
			}
		}
		return nil
	}
}

// MockCommand is a test double for Command.
type MockCommand struct {
	Spec       ExecSpec
	OutputData []byte
	OutputErr  error
	StderrData []byte
	StderrW    io.Writer
}

func (m *MockCommand) Output() ([]byte, error) {
	if m.StderrW != nil && len(m.StderrData) > 0 {
		_, _ = m.StderrW.Write(m.StderrData)
	}
	return m.OutputData, m.OutputErr
}

func (m *MockCommand) SetStderr(w io.Writer) { m.StderrW = w }

// MockExecutor is a test double for Executor.
type MockExecutor struct {
	Commands   []ExecSpec
	OutputData []byte
	OutputErr  error
	// CommandFunc allows custom behavior per command.
	CommandFunc func(ctx context.Context, spec ExecSpec) *MockCommand
}

func (m *MockExecutor) Command(ctx context.Context, name string, args []string, validators ...ExecValidator) (Command, error) {
	spec := ExecSpec{Name: name, Args: args}
	if err := validate(spec, validators); err != nil {
		return nil, err
	}
	m.Commands = append(m.Commands, spec)

	if m.CommandFunc != nil {
		return m.CommandFunc(ctx, spec), nil
	}
	return &MockCommand{
		Spec:       spec,
		OutputData: m.OutputData,
		OutputErr:  m.OutputErr,
	}, nil
}

// LastCommand returns the last recorded command.
func (m *MockExecutor) LastCommand() ExecSpec {
	if len(m.Commands) == 0 {
		return ExecSpec{}
	}
	return m.Commands[len(m.Commands)-1]
}
