package http

import (
	"path"
	"strings"
)

// pathPattern is a cleaned, slash separated route pattern. A "*" segment
// matches exactly one request segment, a trailing "*" matches whatever
// remains, including nothing.
type pathPattern struct {
	segments []string
	rest     bool
}

// pathSet is a list of patterns compiled once when the router is built.
type pathSet []pathPattern

func splitPath(p string) []string {
	return strings.Split(strings.Trim(path.Clean("/"+p), "/"), "/")
}

func compilePaths(patterns []string) pathSet {
	set := make(pathSet, 0, len(patterns))
	for _, p := range patterns {
		segments := splitPath(p)
		rest := false
		if n := len(segments); n > 1 && segments[n-1] == "*" {
			segments, rest = segments[:n-1], true
		} else if n == 1 && segments[0] == "*" {
			segments, rest = nil, true
		}
		set = append(set, pathPattern{segments: segments, rest: rest})
	}
	return set
}

// Matches reports whether the cleaned request path matches any pattern.
// Matching is case sensitive and works on the decoded URL path.
func (s pathSet) Matches(reqPath string) bool {
	if len(s) == 0 {
		return false
	}
	segments := splitPath(reqPath)
	for _, p := range s {
		if p.match(segments) {
			return true
		}
	}
	return false
}

func (p pathPattern) match(segments []string) bool {
	if p.rest {
		if len(segments) < len(p.segments) {
			return false
		}
		segments = segments[:len(p.segments)]
	} else if len(segments) != len(p.segments) {
		return false
	}

	for i, want := range p.segments {
		if want != "*" && want != segments[i] {
			return false
		}
	}
	return true
}
