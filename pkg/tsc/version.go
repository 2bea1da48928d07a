package tsc

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrVersionTooOld is returned when the compiler predates MinVersion.
var ErrVersionTooOld = errors.New("compiler version too old")

// MinVersion is the oldest tsc release whose --pretty false output we parse.
var MinVersion = SemVer{Major: 4, Minor: 5}

// SemVer is a major.minor.patch triple. Pre-release tags are ignored.
type SemVer struct {
	Major, Minor, Patch int
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less orders versions numerically.
func (v SemVer) Less(o SemVer) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts the first version number from output such as
// "Version 5.4.5".
func ParseVersion(out string) (SemVer, error) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return SemVer{}, fmt.Errorf("no version in %q", strings.TrimSpace(out))
	}
	var v SemVer
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// CheckVersion runs "<bin> --version" and fails with ErrVersionTooOld when
// the reported version is below MinVersion.
func CheckVersion(ctx context.Context, r Runner, bin string) (SemVer, error) {
	res, err := r.Run(ctx, "", bin, "--version")
	if err != nil {
		return SemVer{}, fmt.Errorf("running %s --version: %w", bin, err)
	}
	v, err := ParseVersion(string(res.Stdout))
	if err != nil {
		return SemVer{}, fmt.Errorf("%s: %w", bin, err)
	}
	if v.Less(MinVersion) {
		return v, fmt.Errorf("%w: %s %s doesn't satisfy >=%d.%d", ErrVersionTooOld, bin, v, MinVersion.Major, MinVersion.Minor)
	}
	return v, nil
}
