package services

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// archiveVersion matches the version part of a tag archive name,
// e.g. v2.0.0.tar.gz or lofetch-2.0.0.tar.gz
var archiveVersion = regexp.MustCompile(`(?:^|[-_])(v?\d+(?:\.\d+){0,2}(?:-[0-9A-Za-z.-]+)?)\.(?:tar\.gz|tgz|tar\.xz|zip)$`)

// VersionFromURL extracts the release version from a source archive URL.
// It returns false when the file name carries no recognizable version.
func VersionFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	m := archiveVersion.FindStringSubmatch(path.Base(u.Path))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsSemver reports whether version is a valid semantic version, with or without the v prefix
func IsSemver(version string) bool {
	if version == "" {
		return false
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.IsValid(version)
}

// IsPathElement reports whether s can be used as one element of a cache path
func IsPathElement(s string) bool {
	return s != "" && s != "." && filepath.IsLocal(s) && !strings.ContainsAny(s, `/\`)
}
