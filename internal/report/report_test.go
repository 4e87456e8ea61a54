package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-pulse/internal/domain"
)

func sampleReport() *domain.Report {
	created := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	merged := time.Date(2024, 6, 11, 9, 30, 0, 0, time.UTC)

	return Assemble(
		domain.RepoRef{Owner: "octocat", Name: "hello-world"},
		domain.ReportWindow{Days: 7},
		domain.RepoMetadata{Stars: 1200, Forks: 34, OpenIssues: 5},
		domain.Aggregate{
			Total:         36,
			ByContributor: map[string]int{"alice": 20, "bob": 16},
			Recent: []domain.RawRecord{
				{ID: "abc1234", Author: "alice", CreatedAt: created},
			},
		},
		domain.Aggregate{Total: 2, ByContributor: map[string]int{"carol": 2}, Recent: []domain.RawRecord{}},
		domain.Aggregate{
			Total:         4,
			ByContributor: map[string]int{"erin": 4},
			Recent: []domain.RawRecord{
				{ID: "9", Author: "erin", CreatedAt: created, State: "merged", MergedAt: &merged},
			},
		},
		time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
	)
}

func TestAssemble(t *testing.T) {
	rep := sampleReport()

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, "octocat/hello-world", rep.Repo.FullName())
	assert.Equal(t, 7, rep.Window.Days)
	assert.Equal(t, 36, rep.Commits.Total)

	other := sampleReport()
	assert.NotEqual(t, rep.ID, other.ID, "every report carries a fresh id")
}

func TestSerializeParseRoundTrip(t *testing.T) {
	rep := sampleReport()

	data, err := Serialize(rep)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, rep, parsed)
}

func TestSerializeDeterministic(t *testing.T) {
	rep := sampleReport()

	first, err := Serialize(rep)
	require.NoError(t, err)
	second, err := Serialize(rep)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSerializeEmptyAggregates(t *testing.T) {
	rep := Assemble(
		domain.RepoRef{Owner: "octocat", Name: "quiet"},
		domain.ReportWindow{Days: 30},
		domain.RepoMetadata{},
		domain.Aggregate{}, domain.Aggregate{}, domain.Aggregate{},
		time.Now(),
	)

	data, err := Serialize(rep)
	require.NoError(t, err)

	// Empty aggregates serialize as {} and [], never null
	body := string(data)
	assert.NotContains(t, body, "null")
	assert.Contains(t, body, `"by_contributor": {}`)
	assert.Contains(t, body, `"recent": []`)
}

func TestExport(t *testing.T) {
	rep := sampleReport()
	path := filepath.Join(t.TempDir(), "pulse.json")

	require.NoError(t, Export(rep, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, rep, parsed)
}

func TestExportBadPath(t *testing.T) {
	rep := sampleReport()
	err := Export(rep, filepath.Join(t.TempDir(), "missing", "pulse.json"))
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}
