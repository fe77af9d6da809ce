package fingerprint

import (
	"fmt"
	"strconv"
	"strings"
)

// Version identifies the fingerprint algorithm. Fingerprints from different
// versions are not comparable.
const Version = "v0"

// SupportedVersions returns the algorithm versions this package can compute.
func SupportedVersions() []string {
	return []string{Version}
}

// IsSupportedVersion reports whether v names a supported algorithm version.
// An empty v means the current version.
func IsSupportedVersion(v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	n, err := parseVersion(v)
	if err != nil {
		return false, err
	}
	cur, _ := parseVersion(Version)
	return n == cur, nil
}

func parseVersion(v string) (int, error) {
	s := strings.TrimSpace(v)
	if !strings.HasPrefix(s, "v") {
		return 0, fmt.Errorf("invalid fingerprint version: %q", v)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid fingerprint version: %q", v)
	}
	return n, nil
}
