package usecase

import (
	"sort"

	"github.com/naka-gawa/github-insights/internal/domain"
)

// topN returns at most n metrics sorted by value, descending. Equal values
// keep their input order. The input slice is not modified.
func topN(metrics []domain.RepoMetric, n int) []domain.RepoMetric {
	sorted := make([]domain.RepoMetric, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// countLanguages counts repositories per non-empty primary language, ordered
// by count descending with ties in first-seen order.
func countLanguages(repos []domain.Repository) []domain.LanguageCount {
	languages := make([]domain.LanguageCount, 0)
	index := make(map[string]int)
	for _, repo := range repos {
		if repo.Language == "" {
			continue
		}
		i, ok := index[repo.Language]
		if !ok {
			i = len(languages)
			index[repo.Language] = i
			languages = append(languages, domain.LanguageCount{Name: repo.Language})
		}
		languages[i].Count++
	}
	sort.SliceStable(languages, func(i, j int) bool {
		return languages[i].Count > languages[j].Count
	})
	return languages
}
