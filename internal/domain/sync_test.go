package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcheck/podcheck/internal/domain"
)

func healthyProbe(location, path string) domain.ConfigProbe {
	return domain.ConfigProbe{
		Location: location, Path: path, Exists: true,
		Permissions: "600", PermissionsOK: true, Size: 42, HasContent: true,
	}
}

func TestHasRemotePrefix(t *testing.T) {
	assert.True(t, domain.HasRemotePrefix([]string{"dbx:", "local:"}, "dbx:"))
	assert.False(t, domain.HasRemotePrefix([]string{"local:"}, "dbx:"))
	assert.False(t, domain.HasRemotePrefix(nil, "dbx:"))
	assert.False(t, domain.HasRemotePrefix([]string{"local:"}, ""), "blank prefix matches nothing")
}

func TestSyncIssues_AllHealthy(t *testing.T) {
	probes := []domain.ConfigProbe{healthyProbe("workspace", "/w/rclone.conf")}
	listing := domain.RemoteListing{OK: true, Remotes: []string{"dbx:"}, HasRequired: true}

	assert.Empty(t, domain.SyncIssues(probes, listing, "dbx:", "600"))
}

func TestSyncIssues_BothMissingAndRemoteAbsent(t *testing.T) {
	probes := []domain.ConfigProbe{
		{Location: "workspace", Path: "/w/rclone.conf"},
		{Location: "root", Path: "/r/rclone.conf"},
	}
	listing := domain.RemoteListing{OK: false, Error: "Error: Unable to list remotes"}

	issues := domain.SyncIssues(probes, listing, "dbx:", "600")
	require.Len(t, issues, 3)
	assert.Equal(t, "Missing config at /w/rclone.conf", issues[0])
	assert.Equal(t, "Missing config at /r/rclone.conf", issues[1])
	assert.Equal(t, "Rclone cannot find or use the dbx remote", issues[2])
}

func TestSyncIssues_OneIssuePerProbe(t *testing.T) {
	badPerms := healthyProbe("workspace", "/w/rclone.conf")
	badPerms.Permissions = "644"
	badPerms.PermissionsOK = false
	badPerms.HasContent = false

	empty := healthyProbe("root", "/r/rclone.conf")
	empty.HasContent = false
	empty.Size = 0

	listing := domain.RemoteListing{OK: true, Remotes: []string{"dbx:"}, HasRequired: true}
	issues := domain.SyncIssues([]domain.ConfigProbe{badPerms, empty}, listing, "dbx:", "600")

	assert.Equal(t, []string{
		"Incorrect permissions on /w/rclone.conf (should be 600)",
		"Empty config file at /r/rclone.conf",
	}, issues)
}

func TestSyncIssues_StatError(t *testing.T) {
	probe := domain.ConfigProbe{Location: "root", Path: "/r/rclone.conf", Err: "permission denied"}
	listing := domain.RemoteListing{OK: true, HasRequired: true}

	issues := domain.SyncIssues([]domain.ConfigProbe{probe}, listing, "dbx:", "600")
	assert.Equal(t, []string{"Cannot inspect /r/rclone.conf: permission denied"}, issues)
}

func TestSyncIssues_ListingOKButRequiredMissing(t *testing.T) {
	listing := domain.RemoteListing{OK: true, Remotes: []string{"local:"}}
	issues := domain.SyncIssues(nil, listing, "dbx:", "600")
	assert.Equal(t, []string{"Rclone cannot find or use the dbx remote"}, issues)
}

func TestSyncRecommendations(t *testing.T) {
	recs := domain.SyncRecommendations("/workspace/.config/rclone/rclone.conf", "600")
	require.Len(t, recs, 3)
	assert.Equal(t, "Ensure rclone.conf exists in /workspace/.config/rclone/", recs[0])
	assert.Equal(t, "Set permissions to 600: chmod 600 /workspace/.config/rclone/rclone.conf", recs[1])
	assert.Contains(t, recs[2], "Restart the pod")
}

func TestSyncReport_OK(t *testing.T) {
	assert.True(t, domain.SyncReport{}.OK())
	assert.False(t, domain.SyncReport{Issues: []string{"x"}}.OK())
}

func TestConfigProbe_MissingFileOmitsModified(t *testing.T) {
	data, err := json.Marshal(domain.ConfigProbe{Location: "root", Path: "/root/.config/rclone/rclone.conf"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "modified")

	data, err = json.Marshal(domain.ConfigProbe{Exists: true, Modified: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"modified":"2024-05-01T12:00:00Z"`)
}
