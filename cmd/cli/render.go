package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/github-pulse/internal/domain"
)

const topContributorCount = 10

// renderReport prints the report as human-readable tables
func renderReport(w io.Writer, rep *domain.Report) {
	fmt.Fprintf(w, "\nPulse Report: %s\n", rep.Repo.FullName())
	fmt.Fprintf(w, "Period: last %d days (generated %s)\n\n", rep.Window.Days, rep.GeneratedAt.Format("2006-01-02 15:04"))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Stars", fmt.Sprintf("%d", rep.Metadata.Stars)})
	table.Append([]string{"Forks", fmt.Sprintf("%d", rep.Metadata.Forks)})
	table.Append([]string{"Open Issues", fmt.Sprintf("%d", rep.Metadata.OpenIssues)})
	table.Append([]string{"Commits", fmt.Sprintf("%d", rep.Commits.Total)})
	table.Append([]string{"Issues", fmt.Sprintf("%d", rep.Issues.Total)})
	table.Append([]string{"Pull Requests", fmt.Sprintf("%d", rep.Pulls.Total)})
	table.Render()

	if len(rep.Commits.ByContributor) > 0 {
		fmt.Fprintf(w, "\nTop contributors:\n")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Contributor", "Commits"})
		for _, c := range topContributors(rep.Commits.ByContributor, topContributorCount) {
			table.Append([]string{c.login, fmt.Sprintf("%d", c.count)})
		}
		table.Render()
	}

	if len(rep.Commits.Recent) > 0 {
		fmt.Fprintf(w, "\nRecent commits:\n")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Commit", "Author", "Date"})
		for _, rec := range rep.Commits.Recent {
			table.Append([]string{shortID(rec.ID), rec.Author, rec.CreatedAt.Format("2006-01-02 15:04")})
		}
		table.Render()
	}

	if len(rep.Pulls.Recent) > 0 {
		fmt.Fprintf(w, "\nRecent pull requests:\n")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Number", "Author", "State", "Date"})
		for _, rec := range rep.Pulls.Recent {
			table.Append([]string{"#" + rec.ID, rec.Author, rec.State, rec.CreatedAt.Format("2006-01-02 15:04")})
		}
		table.Render()
	}
}

type contributor struct {
	login string
	count int
}

// topContributors sorts the breakdown by count descending, login ascending
// on ties, and keeps the first limit entries
func topContributors(byContributor map[string]int, limit int) []contributor {
	list := make([]contributor, 0, len(byContributor))
	for login, count := range byContributor {
		list = append(list, contributor{login: login, count: count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].login < list[j].login
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
