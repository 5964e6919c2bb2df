package provisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"
)

const DEFAULT_TIMEOUT = 5 * time.Minute

var (
	ErrUnavailable = errors.New("provisioner binary not found")

	// DefaultAgentCommand runs the coding agent inside the container and asks for a JSON reply.
	DefaultAgentCommand = []string{"claude", "-p", "--output-format", "json"}
)

// Runner executes a binary with argv arguments. No shell is ever involved.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) (stdout []byte, err error)
}

// CommandError describes a provisioner invocation that exited abnormally.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s exited with code %d: %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		ce := &CommandError{
			Args:     append([]string{bin}, args...),
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			ce.Err = ctx.Err()
		}
		return stdout.Bytes(), ce
	}
	return stdout.Bytes(), nil
}

// Probe resolves bin on PATH.
func Probe(bin string) (string, bool) {
	if bin == "" {
		return "", false
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", false
	}
	return path, true
}

type Config struct {
	Bin     string
	Agent   []string
	Timeout time.Duration
}

type Provisioner struct {
	bin     string
	agent   []string
	timeout time.Duration
	runner  Runner
}

type Option func(p *Provisioner)

func WithRunner(r Runner) Option {
	return func(p *Provisioner) {
		p.runner = r
	}
}

// New looks cfg.Bin up once and returns ErrUnavailable when it is not installed.
func New(cfg Config, opts ...Option) (*Provisioner, error) {
	path, ok := Probe(cfg.Bin)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnavailable, cfg.Bin)
	}
	return NewWithPath(path, cfg, opts...), nil
}

// NewWithPath skips the lookup. Callers that already know the binary exists, and tests, use it.
func NewWithPath(path string, cfg Config, opts ...Option) *Provisioner {
	p := &Provisioner{
		bin:     path,
		agent:   lo.Ternary(len(cfg.Agent) > 0, cfg.Agent, DefaultAgentCommand),
		timeout: lo.Ternary(cfg.Timeout > 0, cfg.Timeout, DEFAULT_TIMEOUT),
		runner:  execRunner{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provisioner) Bin() string {
	return p.bin
}

func (p *Provisioner) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := p.runner.Run(ctx, p.bin, args...)
	slog.Debug("provisioner command finished",
		slog.String("component", "provisioner"),
		slog.String("command", args[0]),
		slog.Duration("cost", time.Since(start)),
		slog.Bool("ok", err == nil))
	return out, err
}

// Create provisions a container named id from repoURL. Without a repository
// the positional argument is left out and the CLI starts an empty workspace.
func (p *Provisioner) Create(ctx context.Context, repoURL, id string) error {
	args := []string{"create"}
	if repoURL != "" {
		args = append(args, repoURL)
	}
	_, err := p.run(ctx, append(args, "--name", id)...)
	return err
}

// Exec runs the agent command with message inside the container and returns its reply text.
func (p *Provisioner) Exec(ctx context.Context, id, message string) (string, error) {
	args := append([]string{"exec", id, "--"}, p.agent...)
	out, err := p.run(ctx, append(args, message)...)
	if err != nil {
		return "", err
	}
	return ParseExecOutput(out), nil
}

type Info struct {
	Status string
	Raw    map[string]any
}

func (p *Provisioner) Info(ctx context.Context, id string) (Info, error) {
	out, err := p.run(ctx, "info", id, "--format", "json")
	if err != nil {
		return Info{}, err
	}
	return ParseInfoOutput(out)
}

func (p *Provisioner) Stop(ctx context.Context, id string) error {
	_, err := p.run(ctx, "stop", id)
	return err
}

func (p *Provisioner) Delete(ctx context.Context, id string) error {
	_, err := p.run(ctx, "delete", id, "--yes")
	return err
}

var replyFields = []string{"result", "response", "output", "content", "text"}

// ParseExecOutput extracts the reply from agent output. JSON objects yield the first
// non-empty of the known reply fields; anything else is returned verbatim.
func ParseExecOutput(stdout []byte) string {
	trimmed := bytes.TrimSpace(stdout)
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return string(trimmed)
	}
	for _, field := range replyFields {
		if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return string(trimmed)
}

func ParseInfoOutput(stdout []byte) (Info, error) {
	var raw map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &raw); err != nil {
		return Info{}, fmt.Errorf("parse info output: %w", err)
	}
	info := Info{Raw: raw}
	for _, field := range []string{"status", "state"} {
		if s, ok := raw[field].(string); ok && s != "" {
			info.Status = strings.ToLower(s)
			break
		}
	}
	return info, nil
}
