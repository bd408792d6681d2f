package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// ConfigProbe is a read-only snapshot of one config file's metadata.
// Fields after Exists are only meaningful when Exists is true.
type ConfigProbe struct {
	Location      string    `json:"location"`
	Path          string    `json:"path"`
	Exists        bool      `json:"exists"`
	Permissions   string    `json:"permissions,omitempty"`
	PermissionsOK bool      `json:"permissions_ok"`
	Modified      time.Time `json:"modified,omitzero"`
	Size          int64     `json:"size"`
	HasContent    bool      `json:"has_content"`
	Err           string    `json:"error,omitempty"`
}

// RemoteListing is the outcome of asking the sync tool for its remotes.
type RemoteListing struct {
	OK          bool     `json:"ok"`
	Remotes     []string `json:"remotes"`
	HasRequired bool     `json:"has_required"`
	Error       string   `json:"error,omitempty"`
}

// HasRemotePrefix reports whether any remote starts with prefix.
// A blank prefix never matches.
func HasRemotePrefix(remotes []string, prefix string) bool {
	if strings.TrimSpace(prefix) == "" {
		return false
	}
	for _, r := range remotes {
		if strings.HasPrefix(r, prefix) {
			return true
		}
	}
	return false
}

// SyncReport gathers config probes and the functionality checks.
type SyncReport struct {
	Probes          []ConfigProbe `json:"probes"`
	Listing         RemoteListing `json:"listing"`
	Functionality   Report        `json:"functionality"`
	RequiredRemote  string        `json:"required_remote"`
	RequiredMode    string        `json:"required_mode"`
	Issues          []string      `json:"issues"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

func (r SyncReport) OK() bool { return len(r.Issues) == 0 }

// SyncIssues re-evaluates probes and the listing into actionable issue lines.
// Each probe contributes at most one issue.
func SyncIssues(probes []ConfigProbe, listing RemoteListing, requiredRemote, requiredMode string) []string {
	var issues []string
	for _, p := range probes {
		switch {
		case p.Err != "":
			issues = append(issues, fmt.Sprintf("Cannot inspect %s: %s", p.Path, p.Err))
		case !p.Exists:
			issues = append(issues, fmt.Sprintf("Missing config at %s", p.Path))
		case !p.PermissionsOK:
			issues = append(issues, fmt.Sprintf("Incorrect permissions on %s (should be %s)", p.Path, requiredMode))
		case !p.HasContent:
			issues = append(issues, fmt.Sprintf("Empty config file at %s", p.Path))
		}
	}
	if !listing.OK || !listing.HasRequired {
		issues = append(issues, fmt.Sprintf("Rclone cannot find or use the %s remote", strings.TrimSuffix(requiredRemote, ":")))
	}
	return issues
}

// SyncRecommendations returns remediation hints pointing at the primary
// config location.
func SyncRecommendations(primaryPath, requiredMode string) []string {
	return []string{
		fmt.Sprintf("Ensure %s exists in %s/", path.Base(primaryPath), path.Dir(primaryPath)),
		fmt.Sprintf("Set permissions to %s: chmod %s %s", requiredMode, requiredMode, primaryPath),
		"Restart the pod to allow proper configuration copying",
	}
}
