package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/finchforge/shipyard/internal/platform"
	"github.com/finchforge/shipyard/internal/scanner"
)

// FailureKind classifies why a channel's publish attempt failed.
type FailureKind string

const (
	// FailureSourceMissing means the build directory vanished between scan
	// and publish.
	FailureSourceMissing FailureKind = "source_missing"
	// FailureToolError means the transfer tool exited non-zero or could not
	// be started.
	FailureToolError FailureKind = "tool_error"
)

// Target links a detected build directory to its destination channel.
type Target struct {
	PlatformTag string
	ChannelName string
	SourcePath  string
}

// Outcome records one channel's publish attempt. Outcomes are never retried;
// the report consumes them as-is.
type Outcome struct {
	ChannelName string
	PlatformTag string
	Command     string
	Succeeded   bool
	Kind        FailureKind
	Err         string
}

// Options carries the per-run publish configuration.
type Options struct {
	// Version is attached to the upload via --userversion when non-empty.
	Version string
	// DryRun displays each command without executing it. A dry run must
	// never touch remote state.
	DryRun bool
	// IgnorePatterns are passed through verbatim, one --ignore each.
	IgnorePatterns []string
}

// Publisher drives one transfer-tool invocation per target, sequentially,
// isolating failures so every target is attempted exactly once.
type Publisher struct {
	Runner Runner
	Tool   string    // transfer tool binary, e.g. "butler"
	Out    io.Writer // where commands and per-channel progress are written
}

// NewPublisher returns a Publisher using the given runner and writing
// progress to out.
func NewPublisher(runner Runner, tool string, out io.Writer) *Publisher {
	return &Publisher{Runner: runner, Tool: tool, Out: out}
}

// TargetsFromScan derives the channel targets from a scan result, ordered by
// the fixed platform table rather than filesystem enumeration order, so
// repeated runs produce repeated command ordering.
func TargetsFromScan(result *scanner.Result) []Target {
	var targets []Target
	for _, spec := range platform.Specs {
		entry, ok := result.Matched[spec.Tag]
		if !ok {
			continue
		}
		targets = append(targets, Target{
			PlatformTag: spec.Tag,
			ChannelName: spec.ChannelName,
			SourcePath:  entry.Path,
		})
	}
	return targets
}

// PushArgs builds the argument list for one channel's push invocation.
func PushArgs(t Target, destination string, opts Options) []string {
	args := []string{"push", t.SourcePath, fmt.Sprintf("%s:%s", destination, t.ChannelName)}
	if opts.Version != "" {
		args = append(args, "--userversion", opts.Version)
	}
	for _, pattern := range opts.IgnorePatterns {
		args = append(args, "--ignore", pattern)
	}
	return args
}

// Publish attempts every target in order and returns one outcome per target.
// A failed channel never prevents the remaining channels from being
// attempted.
func (p *Publisher) Publish(ctx context.Context, targets []Target, destination string, opts Options) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	for _, target := range targets {
		outcomes = append(outcomes, p.publishOne(ctx, target, destination, opts))
	}
	return outcomes
}

func (p *Publisher) publishOne(ctx context.Context, target Target, destination string, opts Options) Outcome {
	outcome := Outcome{
		ChannelName: target.ChannelName,
		PlatformTag: target.PlatformTag,
	}

	// The source directory may have vanished since the scan.
	if _, err := os.Stat(target.SourcePath); err != nil {
		outcome.Kind = FailureSourceMissing
		outcome.Err = fmt.Sprintf("source path missing: %s", target.SourcePath)
		return outcome
	}

	args := PushArgs(target, destination, opts)
	outcome.Command = CommandLine(p.Tool, args)

	if opts.DryRun {
		fmt.Fprintf(p.Out, "[dry-run] %s\n", outcome.Command)
		outcome.Succeeded = true
		return outcome
	}

	fmt.Fprintf(p.Out, "%s\n", outcome.Command)

	exitCode, output, err := p.Runner.Run(ctx, p.Tool, args...)
	if err != nil {
		outcome.Kind = FailureToolError
		outcome.Err = err.Error()
		if output != "" {
			outcome.Err = fmt.Sprintf("%s: %s", err.Error(), lastLine(output))
		}
		return outcome
	}
	if exitCode != 0 {
		outcome.Kind = FailureToolError
		outcome.Err = fmt.Sprintf("%s exited with code %d: %s", p.Tool, exitCode, lastLine(output))
		return outcome
	}

	outcome.Succeeded = true
	return outcome
}

// Status runs the transfer tool's status query for the destination. It is
// best-effort: callers log the error but never escalate it.
func (p *Publisher) Status(ctx context.Context, destination string) (string, error) {
	args := []string{"status", destination}
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s\n", CommandLine(p.Tool, args))
	}

	exitCode, output, err := p.Runner.Run(ctx, p.Tool, args...)
	if err != nil {
		return "", fmt.Errorf("status check failed: %w", err)
	}
	if exitCode != 0 {
		return output, fmt.Errorf("status check exited with code %d", exitCode)
	}
	return output, nil
}

// CommandLine renders an invocation for display, quoting each argument so
// paths with spaces read unambiguously.
func CommandLine(tool string, args []string) string {
	line := tool
	for _, a := range args {
		line += fmt.Sprintf(" %q", a)
	}
	return line
}

func lastLine(output string) string {
	trimmed := []rune(output)
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == '\n' || trimmed[len(trimmed)-1] == '\r') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	s := string(trimmed)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}
