package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRepoRefFullName(t *testing.T) {
	repo := RepoRef{Owner: "octocat", Name: "hello-world"}
	assert.Equal(t, "octocat/hello-world", repo.FullName())
}

func TestReportWindowCutoff(t *testing.T) {
	start := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	w := ReportWindow{Days: 7}
	assert.Equal(t, time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC), w.Cutoff(start))

	w = ReportWindow{Days: 1}
	assert.Equal(t, start.Add(-24*time.Hour), w.Cutoff(start))
}

func TestReportWindowValid(t *testing.T) {
	assert.True(t, ReportWindow{Days: 1}.Valid())
	assert.True(t, ReportWindow{Days: 365}.Valid())
	assert.False(t, ReportWindow{Days: 0}.Valid())
	assert.False(t, ReportWindow{Days: -7}.Valid())
}
