package domain

// RepoRef identifies the target GitHub repository
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns the "owner/name" form used in API paths and log lines
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoMetadata holds the basic repository counters shown at the top of a report
type RepoMetadata struct {
	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	OpenIssues int `json:"open_issues"`
}
