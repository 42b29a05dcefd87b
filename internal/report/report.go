// Package report turns a StatsResult into human-readable and machine-readable output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/naka-gawa/github-insights/internal/domain"
	"gopkg.in/yaml.v3"
)

// Kind classifies a report line for styling.
type Kind int

const (
	KindText Kind = iota
	KindTitle
	KindSection
	KindBlank
)

// Line is a single line of a report.
type Line struct {
	Kind Kind
	Text string
}

// Report is the ordered sequence of lines describing one StatsResult.
type Report []Line

const (
	noRepositories = "no repositories"
	noLanguages    = "no languages"
)

// Build lays out the report for result. It depends only on its arguments.
func Build(result *domain.StatsResult, account string, window domain.Window) Report {
	var r Report
	text := func(format string, args ...any) {
		r = append(r, Line{Kind: KindText, Text: fmt.Sprintf(format, args...)})
	}
	section := func(title string) {
		r = append(r, Line{Kind: KindBlank}, Line{Kind: KindSection, Text: title})
	}

	r = append(r, Line{Kind: KindTitle, Text: fmt.Sprintf("=== GitHub Statistics for %s ===", account)})
	text("Data collection period: %s to %s", window.StartLabel(), window.EndLabel())

	section("General Statistics:")
	text("Total Stars: %d", result.TotalStars)
	text("Total Forks: %d", result.TotalForks)
	text("Total Contributions: %d", result.ContributionCount)
	text("Total Lines Changed: %d", result.TotalLinesChanged)
	text("Total Repository Views (Last 14 days): %d", result.TotalViews)
	if result.WindowContributions != nil {
		text("Contributions in Window: %d", *result.WindowContributions)
	}

	section(fmt.Sprintf("Top %d Starred Repositories:", domain.TopN))
	if len(result.TopStarred) == 0 {
		text(noRepositories)
	}
	for i, repo := range result.TopStarred {
		text("%d. %s: %d stars", i+1, repo.Name, repo.Value)
	}

	section(fmt.Sprintf("Top %d Viewed Repositories (Last 14 days):", domain.TopN))
	if len(result.TopViewed) == 0 {
		text(noRepositories)
	}
	for i, repo := range result.TopViewed {
		text("%d. %s: %d views", i+1, repo.Name, repo.Value)
	}

	section("Programming Languages Distribution:")
	if len(result.Languages) == 0 {
		text(noLanguages)
	}
	for _, lang := range result.Languages {
		text("%s: %d repositories", lang.Name, lang.Count)
	}
	return r
}

// String renders the report as plain text, one line per entry.
func (r Report) String() string {
	var b strings.Builder
	for _, line := range r {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Theme holds the styles applied to titles and section headings.
type Theme struct {
	Title   lipgloss.Style
	Section lipgloss.Style
}

// NewTheme returns the console theme, with color support detected on w.
func NewTheme(w io.Writer) Theme {
	re := lipgloss.NewRenderer(w)
	return Theme{
		Title:   re.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true),
		Section: re.NewStyle().Foreground(lipgloss.Color("#dfab49")).Bold(true),
	}
}

// Print writes the report to w, styling titles and sections with theme.
func Print(w io.Writer, r Report, theme Theme) error {
	for _, line := range r {
		text := line.Text
		switch line.Kind {
		case KindTitle:
			text = theme.Title.Render(text)
		case KindSection:
			text = theme.Section.Render(text)
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

// Format selects the rendering used for standard output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied output format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", s)
	}
}

// document is the machine-readable form of a report.
type document struct {
	Account string              `json:"account" yaml:"account"`
	From    string              `json:"from" yaml:"from"`
	To      string              `json:"to" yaml:"to"`
	Stats   *domain.StatsResult `json:"stats" yaml:"stats"`
}

// Encode writes result as JSON or YAML.
func Encode(w io.Writer, result *domain.StatsResult, account string, window domain.Window, format Format) error {
	doc := document{Account: account, From: window.StartLabel(), To: window.EndLabel(), Stats: result}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal results to YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not a machine-readable format", format)
	}
}
