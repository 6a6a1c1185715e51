package platform

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is one immediate child of a candidate build directory, as gathered
// by the caller. Classification never touches the filesystem itself.
type Entry struct {
	Name string
	Dir  bool
}

// Spec describes how one target platform is detected and where its builds
// are published. Match inspects a directory's immediate listing; Keywords
// are lower-case substrings tried against the directory name only when no
// file signature matched anywhere.
type Spec struct {
	Tag         string
	ChannelName string
	DisplayName string
	Match       func(entries []Entry) bool
	Keywords    []string
}

// Specs is the fixed detection table. Order encodes priority: a web marker
// beats an executable marker, and the extension-less linux fallback is tried
// last because it is the weakest signal a directory can carry.
var Specs = []Spec{
	{
		Tag:         "web",
		ChannelName: "html5",
		DisplayName: "Web (HTML5)",
		Match:       anyFile("index.html"),
		Keywords:    []string{"web", "html"},
	},
	{
		Tag:         "windows",
		ChannelName: "windows",
		DisplayName: "Windows",
		Match:       anyGlob("*.exe"),
		Keywords:    []string{"win"},
	},
	{
		Tag:         "macos",
		ChannelName: "osx",
		DisplayName: "macOS",
		Match:       anyOf(anyGlob("*.app"), anyGlob("*.dmg")),
		Keywords:    []string{"mac", "osx"},
	},
	{
		Tag:         "android",
		ChannelName: "android",
		DisplayName: "Android",
		Match:       anyOf(anyGlob("*.apk"), anyGlob("*.aab")),
		Keywords:    []string{"android"},
	},
	{
		Tag:         "linux",
		ChannelName: "linux",
		DisplayName: "Linux",
		Match:       anyOf(anyGlob("*.x86_64"), extensionlessRegularFile),
		Keywords:    []string{"linux"},
	},
}

// Classify returns the platform tag for a directory given its immediate
// listing and lower-cased basename. File signatures are evaluated first, in
// table order; directory-name keywords are a fallback in the same order.
// Returns ("", false) for an unclassifiable directory — never an error.
func Classify(entries []Entry, dirNameLower string) (string, bool) {
	for _, spec := range Specs {
		if spec.Match(entries) {
			return spec.Tag, true
		}
	}
	for _, spec := range Specs {
		for _, kw := range spec.Keywords {
			if strings.Contains(dirNameLower, kw) {
				return spec.Tag, true
			}
		}
	}
	return "", false
}

// ByTag looks up a Spec by its platform tag.
func ByTag(tag string) (Spec, bool) {
	for _, spec := range Specs {
		if spec.Tag == tag {
			return spec, true
		}
	}
	return Spec{}, false
}

// anyFile matches when the listing contains a file with this exact name.
// Comparison is case-sensitive, matching the behaviour of the file patterns.
func anyFile(name string) func([]Entry) bool {
	return func(entries []Entry) bool {
		for _, e := range entries {
			if !e.Dir && e.Name == name {
				return true
			}
		}
		return false
	}
}

// anyGlob matches when any entry name matches the doublestar pattern.
// Directories are included: a macOS .app bundle is a directory.
func anyGlob(pattern string) func([]Entry) bool {
	return func(entries []Entry) bool {
		for _, e := range entries {
			if ok, err := doublestar.Match(pattern, e.Name); err == nil && ok {
				return true
			}
		}
		return false
	}
}

func anyOf(matchers ...func([]Entry) bool) func([]Entry) bool {
	return func(entries []Entry) bool {
		for _, m := range matchers {
			if m(entries) {
				return true
			}
		}
		return false
	}
}

// extensionlessRegularFile matches a regular file with no extension. It must
// reject directories: an incidental extension-less directory name is not an
// executable. Dot-files like ".gitignore" have an "extension" per
// filepath.Ext and are excluded by the empty-Ext check.
func extensionlessRegularFile(entries []Entry) bool {
	for _, e := range entries {
		if !e.Dir && filepath.Ext(e.Name) == "" {
			return true
		}
	}
	return false
}
