// Package report combines collection results into the final pulse report
// and handles its JSON serialization and export.
package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
)

// Assemble combines repository metadata and the three aggregates into one
// report record. Pure combination, no I/O.
func Assemble(repo domain.RepoRef, window domain.ReportWindow, metadata domain.RepoMetadata, commits, issues, pulls domain.Aggregate, generatedAt time.Time) *domain.Report {
	return &domain.Report{
		ID:          uuid.New().String(),
		Repo:        repo,
		GeneratedAt: generatedAt.UTC(),
		Window:      window,
		Metadata:    metadata,
		Commits:     normalize(commits),
		Issues:      normalize(issues),
		Pulls:       normalize(pulls),
	}
}

// normalize guarantees the serialized form uses {} and [] instead of null
func normalize(a domain.Aggregate) domain.Aggregate {
	if a.ByContributor == nil {
		a.ByContributor = map[string]int{}
	}
	if a.Recent == nil {
		a.Recent = []domain.RawRecord{}
	}
	return a
}

// Serialize renders the report as indented JSON. encoding/json writes struct
// fields in declaration order and sorts map keys, so two reports with the
// same data serialize byte-identically and diff cleanly between runs.
func Serialize(r *domain.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Parse reads a serialized report back
func Parse(data []byte) (*domain.Report, error) {
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Export writes the serialized report to path
func Export(r *domain.Report, path string) error {
	data, err := Serialize(r)
	if err != nil {
		return apperrors.NewInternalError("failed to serialize report", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return apperrors.NewInternalError("failed to write report export", err)
	}
	return nil
}
