package version

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTag splits a version tag into its integer components.
// Tags are on the form vX.Y.Z with any number of extra trailing
// integers denoting forked versions, e.g. "v1.2.3" or "v1.2.3.2".
// Tags with fewer than three components or non-numeric parts are
// rejected.
func ParseTag(tag string) ([]int, error) {
	if !strings.HasPrefix(tag, "v") {
		return nil, fmt.Errorf("version tag %q must start with 'v'", tag)
	}

	parts := strings.Split(tag[1:], ".")
	if len(parts) < 3 {
		return nil, fmt.Errorf("version tag %q has fewer than three components", tag)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("version tag %q has non-numeric component %q", tag, p)
		}
		nums[i] = n
	}
	return nums, nil
}

// FormatTag is the inverse of ParseTag.
func FormatTag(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return "v" + strings.Join(parts, ".")
}
