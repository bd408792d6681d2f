package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/podcheck/podcheck/internal/domain"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Token Configuration", domain.DisplayName("TokenConfiguration"))
	assert.Equal(t, "List Remotes", domain.DisplayName("ListRemotes"))
}

func TestCheckResult_Key(t *testing.T) {
	r := domain.CheckResult{ID: "ArtifactUpload"}
	assert.Equal(t, "artifact_upload", r.Key())
}

func TestReport_OK(t *testing.T) {
	passed := domain.CheckResult{ID: "A", Status: domain.StatusPassed}
	failed := domain.CheckResult{ID: "B", Status: domain.StatusFailed}
	notRun := domain.CheckResult{ID: "C", Status: domain.StatusNotRun}

	assert.True(t, domain.Report{Results: []domain.CheckResult{passed}}.OK())
	assert.False(t, domain.Report{Results: []domain.CheckResult{passed, failed}}.OK())
	assert.False(t, domain.Report{Results: []domain.CheckResult{passed, notRun}}.OK())
	assert.False(t, domain.Report{Results: []domain.CheckResult{passed}, Error: "late"}.OK())
	assert.False(t, domain.Report{}.OK())
}

func TestReport_Counts(t *testing.T) {
	report := domain.Report{Results: []domain.CheckResult{
		{ID: "A", Status: domain.StatusPassed},
		{ID: "B", Status: domain.StatusFailed},
		{ID: "C", Status: domain.StatusNotRun},
		{ID: "D", Status: domain.StatusNotRun},
	}}
	p, f, n := report.Counts()
	assert.Equal(t, 1, p)
	assert.Equal(t, 1, f)
	assert.Equal(t, 2, n)
}
