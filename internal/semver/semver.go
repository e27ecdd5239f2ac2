// Package semver implements the three-component release versions mro bumps.
//
// Only MAJOR.MINOR.PATCH with non-negative decimal components is accepted;
// pre-release and build metadata are rejected as format errors.
package semver

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFormat is returned for version strings that are not MAJOR.MINOR.PATCH.
	ErrInvalidFormat = errors.New("invalid version format")
	// ErrInvalidBumpType is returned for bump types outside major, minor and patch.
	ErrInvalidBumpType = errors.New("invalid version type")
)

// BumpType is the granularity of a version increment.
type BumpType string

// Bump types.
const (
	Major BumpType = "major"
	Minor BumpType = "minor"
	Patch BumpType = "patch"
)

// BumpTypes lists the accepted bump types in significance order.
var BumpTypes = []BumpType{Major, Minor, Patch}

// ParseBumpType validates s. The empty string selects Patch.
func ParseBumpType(s string) (BumpType, error) {
	switch BumpType(s) {
	case "":
		return Patch, nil
	case Major, Minor, Patch:
		return BumpType(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidBumpType, s)
	}
}

// Version is a MAJOR.MINOR.PATCH triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse reads a MAJOR.MINOR.PATCH string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// parseComponent accepts only ASCII digits, so signs, spaces and empty parts fail.
func parseComponent(part string) (int, error) {
	if part == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(part)
}

// String renders the version as MAJOR.MINOR.PATCH.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag renders the git tag name for the version.
func (v Version) Tag() string {
	return "v" + v.String()
}

// Compare returns -1, 0 or 1 ordering by major, then minor, then patch.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmp.Compare(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp.Compare(v.Minor, o.Minor)
	default:
		return cmp.Compare(v.Patch, o.Patch)
	}
}

// Bump increments the component named by t and zeroes the ones below it.
// A component already at math.MaxInt cannot be incremented.
func (v Version) Bump(t BumpType) (Version, error) {
	var component int
	switch t {
	case Major:
		component = v.Major
	case Minor:
		component = v.Minor
	case Patch:
		component = v.Patch
	}
	if component == math.MaxInt {
		return Version{}, fmt.Errorf("%w: %s component of %s overflows", ErrInvalidFormat, t, v)
	}

	switch t {
	case Major:
		return Version{Major: v.Major + 1}, nil
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, fmt.Errorf("%w: %s", ErrInvalidBumpType, t)
	}
}

// Next computes the version after current for the given bump type.
// An empty bump type means patch.
func Next(current string, bump string) (string, error) {
	v, err := Parse(current)
	if err != nil {
		return "", err
	}
	t, err := ParseBumpType(bump)
	if err != nil {
		return "", err
	}
	next, err := v.Bump(t)
	if err != nil {
		return "", err
	}
	return next.String(), nil
}
