package commands

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from a fresh temporary directory, restoring
// the previous working directory on cleanup.
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// resetPushFlags restores the package-level flag state between runs.
func resetPushFlags() {
	pushVersion = ""
	pushDryRun = false
	pushIgnore = nil
	pushChannels = ""
	pushConfigPath = "shipyard.yml"
	pushJSONSummary = false
}

// execute runs the CLI with the given args, capturing stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetPushFlags()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

// makeBuildRoot lays out the canonical three-directory scenario: a windows
// build, a web build, and an unclassifiable notes directory.
func makeBuildRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "windows"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "windows", "game.exe"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "web"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "web", "index.html"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "readme.txt"), []byte("x"), 0644))
	return root
}

func TestPush_DryRunEndToEnd(t *testing.T) {
	chdirTemp(t) // no shipyard.yml in scope
	root := makeBuildRoot(t)

	out, err := execute(t, "push", root, "alice/mygame", "--dry-run")
	require.NoError(t, err)

	// Two transfer commands (fixed platform order: web before windows)
	// plus the displayed status check, none executed.
	assert.Equal(t, 3, strings.Count(out, "[dry-run]"))
	htmlIdx := strings.Index(out, `"alice/mygame:html5"`)
	winIdx := strings.Index(out, `"alice/mygame:windows"`)
	require.GreaterOrEqual(t, htmlIdx, 0)
	require.GreaterOrEqual(t, winIdx, 0)
	assert.Less(t, htmlIdx, winIdx)
	assert.Contains(t, out, `"status" "alice/mygame"`)
	assert.Contains(t, out, "2 succeeded, 0 failed")
}

func TestPush_DryRunWithVersionAndIgnores(t *testing.T) {
	chdirTemp(t)
	root := makeBuildRoot(t)

	out, err := execute(t, "push", root, "alice/mygame", "--dry-run",
		"--userversion", "1.2.0", "--ignore", "*.pdb", "--ignore", "logs/**")
	require.NoError(t, err)

	assert.Contains(t, out, `"--userversion" "1.2.0"`)
	assert.Contains(t, out, `"--ignore" "*.pdb"`)
	assert.Contains(t, out, `"--ignore" "logs/**"`)
}

func TestPush_ChannelFilter(t *testing.T) {
	chdirTemp(t)
	root := makeBuildRoot(t)

	out, err := execute(t, "push", root, "alice/mygame", "--dry-run", "--channels", "windows")
	require.NoError(t, err)

	assert.Contains(t, out, `"alice/mygame:windows"`)
	assert.NotContains(t, out, `"alice/mygame:html5"`)
}

func TestPush_BuildRootMissing(t *testing.T) {
	chdirTemp(t)

	_, err := execute(t, "push", "./does-not-exist", "alice/mygame", "--dry-run")
	require.Error(t, err)
}

func TestPush_NoPlatformsDetected(t *testing.T) {
	chdirTemp(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "readme.txt"), []byte("x"), 0644))

	_, err := execute(t, "push", root, "alice/mygame", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no platforms detected")
}

func TestPush_NoTargetAnywhere(t *testing.T) {
	chdirTemp(t)
	root := makeBuildRoot(t)

	_, err := execute(t, "push", root, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no publish target")
}

func TestPush_TargetFromConfig(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile("shipyard.yml", []byte("version: \"1.0\"\ntarget: bob/othergame\n"), 0644))
	root := makeBuildRoot(t)

	out, err := execute(t, "push", root, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `"bob/othergame:html5"`)
}

func TestPush_InvalidIgnorePattern(t *testing.T) {
	chdirTemp(t)
	root := makeBuildRoot(t)

	_, err := execute(t, "push", root, "alice/mygame", "--dry-run", "--ignore", "[unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration invalid")
}

func TestScan_Command(t *testing.T) {
	chdirTemp(t)
	root := makeBuildRoot(t)

	out, err := execute(t, "scan", root)
	require.NoError(t, err)
	assert.Contains(t, out, "2 platform(s) detected, 1 director(ies) unclassified")
}

func TestScan_MissingRoot(t *testing.T) {
	chdirTemp(t)

	_, err := execute(t, "scan", "./nope")
	require.Error(t, err)
}
