// Package version resolves version constraint patterns against sets of
// concrete version tags. It is pure and shared by every provider
// variant so that all of them agree on what "latest matching version"
// means.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidPattern is returned when a version pattern does not follow
// the v<int|x>.<int|x>.<int|x>... grammar.
var ErrInvalidPattern = errors.New("invalid version pattern")

// NoMatchError is returned when a well-formed pattern cannot be
// satisfied by any of the supplied tags. The message enumerates every
// tag that was considered so failures can be diagnosed directly.
type NoMatchError struct {
	Name      string
	Pattern   string
	Available []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf(
		"%q does not have a version matching the pattern %q. Available versions are: %s",
		e.Name, e.Pattern, strings.Join(e.Available, ", "),
	)
}

var patternRe = regexp.MustCompile(`^v([0-9]+|x)(\.([0-9]+|x)){2,}$`)
var segmentRe = regexp.MustCompile(`[0-9]+|x`)

// trie keys version tags recursively by each integer component, so the
// tags v1.2.1 and v1.2.3.2 produce the paths 1->2->1 and 1->2->3->2.
type trie map[int]trie

func (t trie) insert(nums []int) {
	current := t
	for _, n := range nums {
		next, ok := current[n]
		if !ok {
			next = trie{}
			current[n] = next
		}
		current = next
	}
}

func (t trie) maxKey() int {
	first := true
	max := 0
	for k := range t {
		if first || k > max {
			max = k
			first = false
		}
	}
	return max
}

// Match finds the tag among tags that best satisfies pattern and
// returns it. A concrete pattern segment must be present verbatim; a
// wildcard 'x' segment resolves to the numerically greatest component
// at that level. Once the pattern is consumed the search keeps
// descending into forked versions, always picking the greatest
// component, so an exact pattern v1.2.3 still resolves to v1.2.3.9
// when that fork exists. The name parameter is only used in error
// messages.
//
// Tags that do not parse as version tags are silently skipped.
func Match(name string, tags []string, pattern string) (string, error) {
	if !patternRe.MatchString(pattern) {
		return "", fmt.Errorf("cannot parse version pattern %q: %w", pattern, ErrInvalidPattern)
	}

	segments := segmentRe.FindAllString(pattern, -1)

	// A wildcard makes every later segment a wildcard too; mixed
	// forms like v1.x.2 are ambiguous and rejected.
	sawWildcard := false
	for _, seg := range segments {
		if seg == "x" {
			sawWildcard = true
		} else if sawWildcard {
			return "", fmt.Errorf(
				"version pattern %q has a digit after a wildcard: %w", pattern, ErrInvalidPattern)
		}
	}

	root := trie{}
	for _, tag := range tags {
		nums, err := ParseTag(tag)
		if err != nil {
			continue
		}
		root.insert(nums)
	}

	current := root
	var chosen []int
	for _, seg := range segments {
		var n int
		if seg == "x" {
			if len(current) == 0 {
				return "", &NoMatchError{Name: name, Pattern: pattern, Available: tags}
			}
			n = current.maxKey()
		} else {
			n, _ = strconv.Atoi(seg)
		}

		next, ok := current[n]
		if !ok {
			return "", &NoMatchError{Name: name, Pattern: pattern, Available: tags}
		}
		chosen = append(chosen, n)
		current = next
	}

	// Descend into any forked versions below the matched tag.
	for len(current) > 0 {
		n := current.maxKey()
		chosen = append(chosen, n)
		current = current[n]
	}

	return FormatTag(chosen), nil
}
