package schema

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RelativeFilePath is the path of a file relative to some root [Directory].
// It never escapes its root, so it can be safely mirrored into another root.
type RelativeFilePath struct {
	segments []string
}

// NewRelativeFilePath returns the [RelativeFilePath] of target inside base.
func NewRelativeFilePath(base string, target string) (RelativeFilePath, error) {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return RelativeFilePath{}, fmt.Errorf("(schema-rel) %w", err)
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return RelativeFilePath{}, fmt.Errorf("(schema-rel) %w: %s not in %s", ErrNotRelative, target, base)
	}

	return RelativeFilePath{segments: strings.Split(rel, string(filepath.Separator))}, nil
}

// PrependDirectory returns a copy of the [RelativeFilePath] nested in an
// additional directory called name.
func (r RelativeFilePath) PrependDirectory(name string) RelativeFilePath {
	segments := make([]string, 0, len(r.segments)+1)
	segments = append(segments, name)
	segments = append(segments, r.segments...)

	return RelativeFilePath{segments: segments}
}

// WithFileNameSuffix returns a copy of the [RelativeFilePath] where the file
// name is suffixed with " (n)" ahead of its extension, "a/b.txt" becoming
// "a/b (n).txt".
func (r RelativeFilePath) WithFileNameSuffix(n int) RelativeFilePath {
	if len(r.segments) == 0 {
		return r
	}

	segments := make([]string, len(r.segments))
	copy(segments, r.segments)

	name := segments[len(segments)-1]
	ext := filepath.Ext(name)
	segments[len(segments)-1] = fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)

	return RelativeFilePath{segments: segments}
}

// ToFile returns the absolute path of the [RelativeFilePath] within root.
func (r RelativeFilePath) ToFile(root Directory) string {
	return root.Join(r.segments...)
}

// FileName returns the last element of the [RelativeFilePath].
func (r RelativeFilePath) FileName() string {
	if len(r.segments) == 0 {
		return ""
	}

	return r.segments[len(r.segments)-1]
}

func (r RelativeFilePath) String() string {
	return filepath.Join(r.segments...)
}
