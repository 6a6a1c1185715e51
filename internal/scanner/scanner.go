package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/finchforge/shipyard/internal/platform"
)

// ErrDirectoryNotFound indicates the build root does not exist or is not a
// directory. Callers check it with errors.Is.
var ErrDirectoryNotFound = errors.New("directory not found")

// BuildEntry is one classified (or unclassifiable) subdirectory of the
// build root.
type BuildEntry struct {
	Path        string
	PlatformTag string // empty when unmatched
}

// Result maps each detected platform tag to the directory holding its build,
// plus the directories that matched nothing. Tags are unique: the classifier
// returns at most one tag per directory, and a later directory never
// overwrites an earlier match for the same platform.
type Result struct {
	Matched   map[string]BuildEntry
	Unmatched []BuildEntry
}

// Reporter receives one line of observability per scanned directory. It is
// a display concern, not part of the scan's data contract; pass nil to
// scan silently.
type Reporter func(entry BuildEntry)

// Scan classifies the immediate subdirectories of buildRoot. Non-directory
// children are ignored. The scan never recurses: builds are expected to be
// flat per-platform folders.
func Scan(buildRoot string, report Reporter) (*Result, error) {
	info, err := os.Stat(buildRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, buildRoot)
		}
		return nil, fmt.Errorf("failed to stat build root %s: %w", buildRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, buildRoot)
	}

	children, err := os.ReadDir(buildRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read build root %s: %w", buildRoot, err)
	}

	result := &Result{Matched: make(map[string]BuildEntry)}

	for _, child := range children {
		if !child.IsDir() {
			continue
		}

		dirPath := filepath.Join(buildRoot, child.Name())
		entries, err := listEntries(dirPath)
		if err != nil {
			return nil, err
		}

		entry := BuildEntry{Path: dirPath}
		tag, ok := platform.Classify(entries, strings.ToLower(child.Name()))
		switch {
		case ok && result.Matched[tag].Path == "":
			entry.PlatformTag = tag
			result.Matched[tag] = entry
		case ok:
			// Second directory for an already-claimed platform; report
			// it as unmatched rather than silently replacing the first.
			result.Unmatched = append(result.Unmatched, entry)
		default:
			result.Unmatched = append(result.Unmatched, entry)
		}

		if report != nil {
			report(entry)
		}
	}

	return result, nil
}

// listEntries gathers the immediate listing of dirPath in the shape the
// classifier consumes.
func listEntries(dirPath string) ([]platform.Entry, error) {
	children, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dirPath, err)
	}

	entries := make([]platform.Entry, 0, len(children))
	for _, c := range children {
		entries = append(entries, platform.Entry{Name: c.Name(), Dir: c.IsDir()})
	}
	return entries, nil
}
