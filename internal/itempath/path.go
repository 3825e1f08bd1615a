// Package itempath implements the materialized-path codec: an item's full
// ancestor chain stored as a single prefix-queryable string. All prefix
// comparisons operate on whole path segments, never raw substrings, so an id
// like "12" can never match as an ancestor of "123".
package itempath

import (
	"strings"

	"arbor/internal/domain"
)

// Separator joins segment ids into a stored path. Ids must never contain it.
const Separator = "."

// Append returns the path of a new child of parentPath with the given id.
// An empty parentPath produces a root path consisting of the id alone.
func Append(parentPath, id string) (string, error) {
	if id == "" || strings.Contains(id, Separator) {
		return "", &domain.InvalidIdentifierError{ID: id}
	}
	if parentPath == "" {
		return id, nil
	}
	return parentPath + Separator + id, nil
}

// Parent returns the path of the item's parent. The second return value is
// false for root paths.
func Parent(path string) (string, bool) {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return "", false
	}
	return path[:idx], true
}

// Last returns the final segment of the path: the item's own id.
func Last(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// Depth returns the number of segments in the path, ancestors plus self.
// A root path has depth 1; the empty path has depth 0.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Separator) + 1
}

// Segments splits the path into its ordered segment ids, root first.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// IsDescendant reports whether path is ancestorPath itself or lies inside
// its subtree. The prefix match is segment-aligned.
func IsDescendant(path, ancestorPath string) bool {
	if ancestorPath == "" || path == "" {
		return false
	}
	if path == ancestorPath {
		return true
	}
	return strings.HasPrefix(path, ancestorPath+Separator)
}

// RewritePrefix replaces oldPrefix at the start of path with newPrefix.
// oldPrefix must be a segment-aligned prefix of path.
func RewritePrefix(path, oldPrefix, newPrefix string) (string, error) {
	if !IsDescendant(path, oldPrefix) {
		return "", &domain.ValidationError{Message: "path prefix mismatch: " + oldPrefix + " is not a prefix of " + path}
	}
	if path == oldPrefix {
		return newPrefix, nil
	}
	return newPrefix + path[len(oldPrefix):], nil
}

// Ancestors enumerates every prefix of the path from the item itself back to
// the root, closest first. This is the lookup order for nearest-ancestor
// permission and visibility resolution.
func Ancestors(path string) []string {
	if path == "" {
		return nil
	}
	prefixes := make([]string, 0, Depth(path))
	current := path
	for {
		prefixes = append(prefixes, current)
		parent, ok := Parent(current)
		if !ok {
			return prefixes
		}
		current = parent
	}
}
