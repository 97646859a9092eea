package services

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

// Severity classifies an audit problem
type Severity string

// Audit severities
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// AuditProblem is a single finding about a formula descriptor
type AuditProblem struct {
	Field    string
	Severity Severity
	Message  string
}

func (p AuditProblem) String() string {
	return fmt.Sprintf("%s: %s: %s", p.Severity, p.Field, p.Message)
}

// AuditReport contains the audit result for one formula
type AuditReport struct {
	Formula  string
	Problems []AuditProblem
}

// IsClean returns true if no errors were found, or no problems at all when strict
func (r *AuditReport) IsClean(strict bool) bool {
	for _, p := range r.Problems {
		if p.Severity == SeverityError || strict {
			return false
		}
	}
	return true
}

// Errors returns only the error-level problems
func (r *AuditReport) Errors() []AuditProblem {
	var out []AuditProblem
	for _, p := range r.Problems {
		if p.Severity == SeverityError {
			out = append(out, p)
		}
	}
	return out
}

// KnownLicenses is the SPDX vocabulary accepted for the license field
var KnownLicenses = map[string]bool{
	"MIT":           true,
	"Apache-2.0":    true,
	"BSD-2-Clause":  true,
	"BSD-3-Clause":  true,
	"GPL-2.0-only":  true,
	"GPL-3.0-only":  true,
	"LGPL-3.0-only": true,
	"MPL-2.0":       true,
	"ISC":           true,
	"Unlicense":     true,
	"0BSD":          true,
	"AGPL-3.0-only": true,
}

var (
	sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
	namePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9+_.-]*$`)
)

// AuditService checks formula descriptors against the tap's conventions
type AuditService struct{}

// NewAuditService creates a new audit service
func NewAuditService() *AuditService {
	return &AuditService{}
}

// Audit validates every descriptor field and returns the findings
func (s *AuditService) Audit(f *entities.Formula) *AuditReport {
	report := &AuditReport{Formula: f.Name}
	add := func(field string, sev Severity, format string, args ...any) {
		report.Problems = append(report.Problems, AuditProblem{
			Field:    field,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	switch {
	case f.Name == "":
		add("name", SeverityError, "must not be empty")
	case !namePattern.MatchString(f.Name):
		add("name", SeverityError, "%q must be lowercase letters, digits, '+', '-', '_' or '.'", f.Name)
	}

	desc := strings.TrimSpace(f.Description)
	switch {
	case desc == "":
		add("desc", SeverityError, "must not be empty")
	case strings.HasSuffix(desc, "."):
		add("desc", SeverityWarning, "should not end with a period")
	case strings.HasPrefix(strings.ToLower(desc), strings.ToLower(f.Name)+" "):
		add("desc", SeverityWarning, "should not start with the formula name")
	}

	if msg := checkHTTPURL(f.Homepage); msg != "" {
		add("homepage", SeverityError, "%s", msg)
	}

	if msg := checkHTTPURL(f.URL); msg != "" {
		add("url", SeverityError, "%s", msg)
	} else if f.Version == "" {
		add("version", SeverityWarning, "cannot derive a version from %s", f.URL)
	}

	if f.Version != "" && f.Version != entities.HeadVersion && !IsSemver(f.Version) {
		add("version", SeverityError, "%q is not a semantic version", f.Version)
	}

	switch {
	case f.SHA256 == "":
		add("sha256", SeverityWarning, "checksum pending; set it once the release archive is published")
	case !sha256Pattern.MatchString(f.SHA256):
		add("sha256", SeverityError, "must be 64 lowercase hex characters")
	}

	switch {
	case f.License == "":
		add("license", SeverityError, "must not be empty")
	case !KnownLicenses[f.License]:
		add("license", SeverityError, "%q is not a recognized SPDX identifier", f.License)
	}

	if f.Head != nil {
		if msg := checkHeadURL(f.Head.URL); msg != "" {
			add("head.url", SeverityError, "%s", msg)
		}
		if f.Head.Branch == "" {
			add("head.branch", SeverityError, "must not be empty")
		}
	}

	if f.Signature != nil {
		if msg := checkHTTPURL(f.Signature.URL); msg != "" {
			add("signature.url", SeverityError, "%s", msg)
		}
		if f.Signature.Key == "" {
			add("signature.key", SeverityError, "must name a public key file")
		}
	}

	if len(f.Install.Bin) == 0 {
		add("install.bin", SeverityError, "must list at least one artifact")
	}
	for _, bin := range f.Install.Bin {
		if bin == "" || !filepath.IsLocal(bin) {
			add("install.bin", SeverityError, "%q must be a relative path inside the source tree", bin)
		}
	}

	if f.Test.Timeout <= 0 {
		add("test.timeout_seconds", SeverityError, "must be positive")
	}

	return report
}

func checkHTTPURL(raw string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("%q is not a valid URI", raw)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Sprintf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("%q has no host", raw)
	}
	if u.Scheme == "http" {
		return fmt.Sprintf("%q should use https", raw)
	}
	return ""
}

// checkHeadURL also accepts scp-style git remotes and local file URLs
func checkHeadURL(raw string) string {
	if strings.HasPrefix(raw, "git@") && strings.Contains(raw, ":") {
		return ""
	}
	if strings.HasPrefix(raw, "file://") {
		return ""
	}
	return checkHTTPURL(raw)
}
