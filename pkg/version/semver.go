package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var semVerPattern = regexp.MustCompile(`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?(?:\+([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)

// SemVer is a semantic version per semver.org, with an optional leading v.
type SemVer struct {
	Major int64
	Minor int64
	Patch int64

	PreRelease string
	Build      string
}

// Parse parses a semantic version string.
func Parse(raw string) (SemVer, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SemVer{}, errors.New("version cannot be empty")
	}

	matches := semVerPattern.FindStringSubmatch(raw)
	if len(matches) != 6 {
		return SemVer{}, fmt.Errorf("invalid semantic version: %q", raw)
	}

	major, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return SemVer{}, fmt.Errorf("invalid major version: %w", err)
	}
	minor, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return SemVer{}, fmt.Errorf("invalid minor version: %w", err)
	}
	patch, err := strconv.ParseInt(matches[3], 10, 64)
	if err != nil {
		return SemVer{}, fmt.Errorf("invalid patch version: %w", err)
	}

	v := SemVer{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		PreRelease: matches[4],
		Build:      matches[5],
	}

	if err := validatePreRelease(v.PreRelease); err != nil {
		return SemVer{}, err
	}
	return v, nil
}

// IsValid reports whether raw is a valid semantic version.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// String returns the canonical string representation.
func (v SemVer) String() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		base += "-" + v.PreRelease
	}
	if v.Build != "" {
		base += "+" + v.Build
	}
	return base
}

func validatePreRelease(pr string) error {
	if pr == "" {
		return nil
	}
	for _, id := range strings.Split(pr, ".") {
		if id == "" {
			return errors.New("invalid prerelease identifier: empty")
		}
		if _, err := strconv.ParseInt(id, 10, 64); err == nil && len(id) > 1 && id[0] == '0' {
			return fmt.Errorf("invalid prerelease numeric identifier %q: leading zero", id)
		}
	}
	return nil
}
