// Package chromedriver picks a chromedriver release that matches the
// installed Chrome browser.
package chromedriver

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"commons/process"
)

var (
	ErrNoMatch      = errors.New("no matching chromedriver version")
	ErrNoBrowser    = errors.New("no chrome browser found")
	ErrInvalidInput = errors.New("invalid version")
)

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+){0,3}`)

// DefaultBinaries are tried in order by DetectBrowser.
var DefaultBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
}

// Version is MAJOR.MINOR.BUILD.PATCH; missing parts are zero.
type Version [4]int

func ParseVersion(s string) (Version, error) {
	var v Version
	m := versionPattern.FindString(s)
	if m == "" {
		return v, fmt.Errorf("%w: %q", ErrInvalidInput, s)
	}
	for i, part := range strings.Split(m, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return v, fmt.Errorf("%w: %q", ErrInvalidInput, s)
		}
		v[i] = n
	}
	return v, nil
}

func (v Version) Major() int {
	return v[0]
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

func (v Version) Compare(o Version) int {
	for i := range v {
		if v[i] != o[i] {
			if v[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func sameBuild(a, b Version) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}

// Match returns the driver for browser: the highest patch of the same
// MAJOR.MINOR.BUILD if one exists, otherwise the highest driver with the same
// major version.
func Match(browser Version, drivers []Version) (Version, error) {
	sorted := append([]Version(nil), drivers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) > 0 })

	for _, d := range sorted {
		if sameBuild(d, browser) {
			return d, nil
		}
	}
	for _, d := range sorted {
		if d.Major() == browser.Major() {
			return d, nil
		}
	}
	return Version{}, fmt.Errorf("%w: browser %s", ErrNoMatch, browser)
}

// DetectBrowser runs "<binary> --version" for each candidate and returns the
// first version reported.
func DetectBrowser(binaries ...string) (Version, error) {
	if len(binaries) == 0 {
		binaries = DefaultBinaries
	}
	for _, bin := range binaries {
		out, err := process.Output(bin + " --version")
		if err != nil {
			continue
		}
		if v, err := ParseVersion(out); err == nil {
			return v, nil
		}
	}
	return Version{}, fmt.Errorf("%w: tried %s", ErrNoBrowser, strings.Join(binaries, ", "))
}

func DriverBinary(goos string) string {
	if goos == "windows" {
		return "chromedriver.exe"
	}
	return "chromedriver"
}
