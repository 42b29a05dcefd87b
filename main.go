// github-insights collects repository statistics for a single GitHub
// account, prints a summary and renders a chart image.
//
// Usage:
//
//	github-insights stats --account octocat
//	GITHUB_TOKEN=... github-insights stats -a octocat --format json
package main

import "github.com/naka-gawa/github-insights/cmd"

func main() {
	cmd.Execute()
}
