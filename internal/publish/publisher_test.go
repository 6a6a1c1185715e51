package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchforge/shipyard/internal/scanner"
)

// fakeRunner records invocations and returns scripted results per channel.
type fakeRunner struct {
	calls     [][]string
	exitCodes map[string]int // keyed by the push spec argument, default 0
	output    string
	startErr  error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (int, string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.startErr != nil {
		return -1, "", f.startErr
	}
	for key, code := range f.exitCodes {
		for _, a := range args {
			if a == key {
				return code, f.output, nil
			}
		}
	}
	return 0, f.output, nil
}

func makeTargets(t *testing.T) ([]Target, string) {
	t.Helper()
	root := t.TempDir()
	targets := []Target{
		{PlatformTag: "web", ChannelName: "html5", SourcePath: filepath.Join(root, "web")},
		{PlatformTag: "windows", ChannelName: "windows", SourcePath: filepath.Join(root, "windows")},
		{PlatformTag: "linux", ChannelName: "linux", SourcePath: filepath.Join(root, "linux")},
	}
	for _, tgt := range targets {
		require.NoError(t, os.MkdirAll(tgt.SourcePath, 0755))
	}
	return targets, root
}

func TestPublish_AllChannelsSucceed(t *testing.T) {
	targets, _ := makeTargets(t)
	runner := &fakeRunner{}
	pub := NewPublisher(runner, "butler", &bytes.Buffer{})

	outcomes := pub.Publish(context.Background(), targets, "alice/mygame", Options{})

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.Succeeded, "channel %s", o.ChannelName)
	}
	assert.Len(t, runner.calls, 3)
}

func TestPublish_DryRunExecutesNothing(t *testing.T) {
	targets, _ := makeTargets(t)
	runner := &fakeRunner{}
	out := &bytes.Buffer{}
	pub := NewPublisher(runner, "butler", out)

	outcomes := pub.Publish(context.Background(), targets, "alice/mygame", Options{DryRun: true})

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.Succeeded)
	}
	// Dry run displays the commands but never starts a process.
	assert.Empty(t, runner.calls)
	assert.Equal(t, 3, strings.Count(out.String(), "[dry-run]"))
	assert.Contains(t, out.String(), `"alice/mygame:html5"`)
}

func TestPublish_FailureIsolation(t *testing.T) {
	targets, _ := makeTargets(t)
	// windows channel fails; the others must still be attempted.
	runner := &fakeRunner{
		exitCodes: map[string]int{"alice/mygame:windows": 1},
		output:    "remote rejected the build\n",
	}
	pub := NewPublisher(runner, "butler", &bytes.Buffer{})

	outcomes := pub.Publish(context.Background(), targets, "alice/mygame", Options{})

	require.Len(t, outcomes, 3)
	assert.Len(t, runner.calls, 3, "every target must be attempted")

	byChannel := map[string]Outcome{}
	for _, o := range outcomes {
		byChannel[o.ChannelName] = o
	}
	assert.True(t, byChannel["html5"].Succeeded)
	assert.True(t, byChannel["linux"].Succeeded)

	failed := byChannel["windows"]
	assert.False(t, failed.Succeeded)
	assert.Equal(t, FailureToolError, failed.Kind)
	assert.Contains(t, failed.Err, "remote rejected the build")
}

func TestPublish_SourceMissing(t *testing.T) {
	targets, _ := makeTargets(t)
	require.NoError(t, os.RemoveAll(targets[1].SourcePath))

	runner := &fakeRunner{}
	pub := NewPublisher(runner, "butler", &bytes.Buffer{})

	outcomes := pub.Publish(context.Background(), targets, "alice/mygame", Options{})

	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Succeeded)
	assert.False(t, outcomes[1].Succeeded)
	assert.Equal(t, FailureSourceMissing, outcomes[1].Kind)
	assert.True(t, outcomes[2].Succeeded)

	// The missing source is skipped without invoking the tool.
	assert.Len(t, runner.calls, 2)
}

func TestPublish_ToolAbsent(t *testing.T) {
	targets, _ := makeTargets(t)
	runner := &fakeRunner{startErr: fmt.Errorf("butler not found in PATH")}
	pub := NewPublisher(runner, "butler", &bytes.Buffer{})

	outcomes := pub.Publish(context.Background(), targets, "alice/mygame", Options{})

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.False(t, o.Succeeded)
		assert.Equal(t, FailureToolError, o.Kind)
		assert.Contains(t, o.Err, "not found in PATH")
	}
}

func TestPushArgs(t *testing.T) {
	target := Target{PlatformTag: "windows", ChannelName: "windows", SourcePath: "./build/windows"}

	t.Run("minimal", func(t *testing.T) {
		args := PushArgs(target, "alice/mygame", Options{})
		assert.Equal(t, []string{"push", "./build/windows", "alice/mygame:windows"}, args)
	})

	t.Run("version and ignores", func(t *testing.T) {
		args := PushArgs(target, "alice/mygame", Options{
			Version:        "1.2.0",
			IgnorePatterns: []string{"*.pdb", "logs/**"},
		})
		assert.Equal(t, []string{
			"push", "./build/windows", "alice/mygame:windows",
			"--userversion", "1.2.0",
			"--ignore", "*.pdb",
			"--ignore", "logs/**",
		}, args)
	})
}

func TestTargetsFromScan_FixedOrder(t *testing.T) {
	result := &scanner.Result{
		Matched: map[string]scanner.BuildEntry{
			"linux":   {Path: "./build/linux", PlatformTag: "linux"},
			"web":     {Path: "./build/web", PlatformTag: "web"},
			"windows": {Path: "./build/windows", PlatformTag: "windows"},
		},
	}

	targets := TargetsFromScan(result)

	require.Len(t, targets, 3)
	// Platform table order, not map iteration order.
	assert.Equal(t, "html5", targets[0].ChannelName)
	assert.Equal(t, "windows", targets[1].ChannelName)
	assert.Equal(t, "linux", targets[2].ChannelName)
}

func TestStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := &fakeRunner{output: "channel html5: build 42\n"}
		pub := NewPublisher(runner, "butler", &bytes.Buffer{})

		output, err := pub.Status(context.Background(), "alice/mygame")
		require.NoError(t, err)
		assert.Contains(t, output, "build 42")
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"butler", "status", "alice/mygame"}, runner.calls[0])
	})

	t.Run("non-zero exit", func(t *testing.T) {
		runner := &fakeRunner{exitCodes: map[string]int{"alice/mygame": 2}}
		pub := NewPublisher(runner, "butler", &bytes.Buffer{})

		_, err := pub.Status(context.Background(), "alice/mygame")
		require.Error(t, err)
	})
}

func TestCommandLine_QuotesArguments(t *testing.T) {
	line := CommandLine("butler", []string{"push", "./my builds/web", "alice/mygame:html5"})
	assert.Equal(t, `butler "push" "./my builds/web" "alice/mygame:html5"`, line)
}
