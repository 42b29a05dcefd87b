// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Collector is the use case for collecting the statistics of one account.
// It orchestrates the fetching and folding of data into a StatsResult.
type Collector struct {
	fetcher             gateway.Fetcher
	logger              zerolog.Logger
	concurrency         int
	windowContributions bool
}

// Option customizes a Collector.
type Option func(*Collector)

// WithConcurrency bounds the number of per-repository and per-commit lookups
// in flight. Values below 2 keep the lookups sequential.
func WithConcurrency(n int) Option {
	return func(c *Collector) { c.concurrency = n }
}

// WithWindowContributions enables the GraphQL lookup of contributions inside the report window.
func WithWindowContributions(enabled bool) Option {
	return func(c *Collector) { c.windowContributions = enabled }
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger zerolog.Logger, opts ...Option) *Collector {
	c := &Collector{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect performs the main business logic. Any failing fetch aborts the
// whole collection; the returned error then wraps domain.ErrCollection.
func (c *Collector) Collect(ctx context.Context, account string, window domain.Window) (*domain.StatsResult, error) {
	c.logger.Info().Str("account", account).Msg("Usecase: Starting data collection...")
	result, err := c.collect(ctx, account, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCollection, err)
	}
	c.logger.Info().Msg("Usecase: Collection complete.")
	return result, nil
}

func (c *Collector) collect(ctx context.Context, account string, window domain.Window) (*domain.StatsResult, error) {
	repos, err := c.fetcher.ListRepositories(ctx, account)
	if err != nil {
		return nil, err
	}

	result := &domain.StatsResult{}
	stars := make([]domain.RepoMetric, len(repos))
	for i, repo := range repos {
		result.TotalStars += repo.Stars
		result.TotalForks += repo.Forks
		stars[i] = domain.RepoMetric{Name: repo.Name, Value: repo.Stars}
	}

	c.logger.Info().Int("repositories", len(repos)).Msg("[2/5] Analyzing repository traffic...")
	views := make([]domain.RepoMetric, len(repos))
	err = c.forEach(ctx, len(repos), func(ctx context.Context, i int) error {
		count, err := c.fetcher.FetchViewCount(ctx, repos[i].Owner, repos[i].Name)
		if err != nil {
			return err
		}
		views[i] = domain.RepoMetric{Name: repos[i].Name, Value: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		result.TotalViews += v.Value
	}

	result.ContributionCount, err = c.fetcher.FetchContributionCount(ctx, account)
	if err != nil {
		return nil, err
	}

	commits, err := c.fetcher.ListPushedCommits(ctx, account)
	if err != nil {
		return nil, err
	}
	lines := make([]int, len(commits))
	err = c.forEach(ctx, len(commits), func(ctx context.Context, i int) error {
		owner, name, err := gateway.SplitRepo(commits[i].Repo)
		if err != nil {
			return err
		}
		lines[i], err = c.fetcher.FetchLinesChanged(ctx, owner, name, commits[i].SHA)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, n := range lines {
		result.TotalLinesChanged += n
	}

	c.logger.Info().Msg("[5/5] Analyzing programming languages...")
	result.Languages = countLanguages(repos)
	result.TopStarred = topN(stars, domain.TopN)
	result.TopViewed = topN(views, domain.TopN)

	if c.windowContributions {
		count, err := c.fetcher.FetchWindowContributions(ctx, account, window)
		if err != nil {
			return nil, err
		}
		result.WindowContributions = &count
	}
	return result, nil
}

// forEach calls fn for every index in [0, n). Results must be written to
// index-addressed slots so the outcome does not depend on scheduling.
func (c *Collector) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if c.concurrency < 2 {
		for i := 0; i < n; i++ {
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			return fn(egCtx, i)
		})
	}
	return eg.Wait()
}
