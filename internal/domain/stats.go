// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"time"
)

// TopN is the length limit of the ranked repository lists.
const TopN = 5

// WindowDays is the nominal lookback of a report.
const WindowDays = 90

var (
	// ErrCollection is returned when any query against the GitHub API fails.
	ErrCollection = errors.New("collection failed")
	// ErrRender is returned when the chart image cannot be produced.
	ErrRender = errors.New("render failed")
)

// Repository is the subset of repository metadata the collector needs.
type Repository struct {
	Owner    string
	Name     string
	Stars    int
	Forks    int
	Language string
}

// CommitRef points at a single commit pushed by the account.
type CommitRef struct {
	Repo string // owner/name
	SHA  string
}

// RepoMetric pairs a repository name with one of its counts.
type RepoMetric struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// LanguageCount is the number of repositories whose primary language is Name.
type LanguageCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// StatsResult holds everything collected for one account in one run.
// It is built once by the collector and only read afterwards.
type StatsResult struct {
	TotalStars        int             `json:"total_stars" yaml:"total_stars"`
	TotalForks        int             `json:"total_forks" yaml:"total_forks"`
	ContributionCount int             `json:"contribution_count" yaml:"contribution_count"`
	TotalLinesChanged int             `json:"total_lines_changed" yaml:"total_lines_changed"`
	TotalViews        int             `json:"total_views" yaml:"total_views"`
	TopStarred        []RepoMetric    `json:"top_starred_repos" yaml:"top_starred_repos"`
	TopViewed         []RepoMetric    `json:"top_viewed_repos" yaml:"top_viewed_repos"`
	Languages         []LanguageCount `json:"languages" yaml:"languages"`

	// WindowContributions is only set when the window lookup was requested.
	WindowContributions *int `json:"window_contributions,omitempty" yaml:"window_contributions,omitempty"`
}

// Window is the nominal collection period shown on reports and charts.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window ending at now.
func NewWindow(now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -WindowDays), End: now}
}

// StartLabel formats the start of the window as a date.
func (w Window) StartLabel() string { return w.Start.Format("2006-01-02") }

// EndLabel formats the end of the window with minute precision.
func (w Window) EndLabel() string { return w.End.Format("2006-01-02 15:04") }

// Stamp formats the end of the window for use in file names.
func (w Window) Stamp() string { return w.End.Format("20060102_1504") }
