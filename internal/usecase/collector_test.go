package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListRepositories(ctx context.Context, user string) ([]domain.Repository, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repository), args.Error(1)
}

func (m *mockFetcher) FetchViewCount(ctx context.Context, owner, repo string) (int, error) {
	args := m.Called(ctx, owner, repo)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchContributionCount(ctx context.Context, user string) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) ListPushedCommits(ctx context.Context, user string) ([]domain.CommitRef, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitRef), args.Error(1)
}

func (m *mockFetcher) FetchLinesChanged(ctx context.Context, owner, repo, sha string) (int, error) {
	args := m.Called(ctx, owner, repo, sha)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchWindowContributions(ctx context.Context, user string, window domain.Window) (int, error) {
	args := m.Called(ctx, user, window)
	return args.Int(0), args.Error(1)
}

var testWindow = domain.NewWindow(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))

// reposWithStars builds repositories r0..rN owned by any-user with the given star counts.
func reposWithStars(stars ...int) []domain.Repository {
	repos := make([]domain.Repository, len(stars))
	for i, s := range stars {
		repos[i] = domain.Repository{Owner: "any-user", Name: fmt.Sprintf("r%d", i), Stars: s, Forks: 1}
	}
	return repos
}

func TestCollector_Collect(t *testing.T) {
	testCases := []struct {
		name        string
		repos       []domain.Repository
		views       map[string]int
		commits     []domain.CommitRef
		lines       map[string]int
		total       int
		expected    *domain.StatsResult
		concurrency int
	}{
		{
			name:  "empty account",
			repos: []domain.Repository{},
			expected: &domain.StatsResult{
				TopStarred: []domain.RepoMetric{},
				TopViewed:  []domain.RepoMetric{},
				Languages:  []domain.LanguageCount{},
			},
		},
		{
			name:  "seven repositories are ranked and truncated",
			repos: reposWithStars(10, 5, 8, 2, 1, 20, 3),
			views: map[string]int{"r0": 4, "r1": 9, "r2": 0, "r3": 9, "r4": 1, "r5": 2, "r6": 30},
			commits: []domain.CommitRef{
				{Repo: "any-user/r0", SHA: "a"},
				{Repo: "any-user/r5", SHA: "b"},
			},
			lines: map[string]int{"a": 12, "b": 30},
			total: 77,
			expected: &domain.StatsResult{
				TotalStars:        49,
				TotalForks:        7,
				ContributionCount: 77,
				TotalLinesChanged: 42,
				TotalViews:        55,
				TopStarred: []domain.RepoMetric{
					{Name: "r5", Value: 20}, {Name: "r0", Value: 10}, {Name: "r2", Value: 8},
					{Name: "r1", Value: 5}, {Name: "r6", Value: 3},
				},
				TopViewed: []domain.RepoMetric{
					{Name: "r6", Value: 30}, {Name: "r1", Value: 9}, {Name: "r3", Value: 9},
					{Name: "r0", Value: 4}, {Name: "r5", Value: 2},
				},
				Languages: []domain.LanguageCount{},
			},
		},
		{
			name: "languages are counted and ordered",
			repos: []domain.Repository{
				{Owner: "any-user", Name: "a", Language: "Python"},
				{Owner: "any-user", Name: "b", Language: "Go"},
				{Owner: "any-user", Name: "c"},
				{Owner: "any-user", Name: "d", Language: "Go"},
				{Owner: "any-user", Name: "e", Language: "Rust"},
				{Owner: "any-user", Name: "f", Language: "Python"},
				{Owner: "any-user", Name: "g", Language: "Go"},
			},
			expected: &domain.StatsResult{
				TopStarred: []domain.RepoMetric{
					{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"},
				},
				TopViewed: []domain.RepoMetric{
					{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"},
				},
				Languages: []domain.LanguageCount{
					{Name: "Go", Count: 3}, {Name: "Python", Count: 2}, {Name: "Rust", Count: 1},
				},
			},
		},
		{
			name:        "bounded concurrency keeps the sequential ordering",
			concurrency: 4,
			repos:       reposWithStars(3, 3, 3, 3, 3, 3),
			views:       map[string]int{"r0": 1, "r1": 5, "r2": 5, "r3": 2, "r4": 5, "r5": 5},
			commits: []domain.CommitRef{
				{Repo: "any-user/r0", SHA: "a"},
				{Repo: "any-user/r1", SHA: "b"},
				{Repo: "any-user/r2", SHA: "c"},
			},
			lines: map[string]int{"a": 1, "b": 2, "c": 3},
			expected: &domain.StatsResult{
				TotalStars:        18,
				TotalForks:        6,
				TotalLinesChanged: 6,
				TotalViews:        23,
				TopStarred: []domain.RepoMetric{
					{Name: "r0", Value: 3}, {Name: "r1", Value: 3}, {Name: "r2", Value: 3},
					{Name: "r3", Value: 3}, {Name: "r4", Value: 3},
				},
				TopViewed: []domain.RepoMetric{
					{Name: "r1", Value: 5}, {Name: "r2", Value: 5}, {Name: "r4", Value: 5},
					{Name: "r5", Value: 5}, {Name: "r3", Value: 2},
				},
				Languages: []domain.LanguageCount{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			fetcher := new(mockFetcher)
			fetcher.On("ListRepositories", mock.Anything, "any-user").Return(tc.repos, nil)
			for _, repo := range tc.repos {
				fetcher.On("FetchViewCount", mock.Anything, "any-user", repo.Name).Return(tc.views[repo.Name], nil)
			}
			fetcher.On("FetchContributionCount", mock.Anything, "any-user").Return(tc.total, nil)
			fetcher.On("ListPushedCommits", mock.Anything, "any-user").Return(tc.commits, nil)
			for _, c := range tc.commits {
				fetcher.On("FetchLinesChanged", mock.Anything, "any-user", c.Repo[len("any-user/"):], c.SHA).Return(tc.lines[c.SHA], nil)
			}

			collector := NewCollector(fetcher, zerolog.Nop(), WithConcurrency(tc.concurrency))

			// --- Act ---
			result, err := collector.Collect(context.Background(), "any-user", testWindow)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCollector_Collect_Errors(t *testing.T) {
	apiErr := errors.New("github api error")
	repos := reposWithStars(1, 2)

	testCases := []struct {
		name    string
		arrange func(f *mockFetcher)
	}{
		{
			name: "list repositories fails",
			arrange: func(f *mockFetcher) {
				f.On("ListRepositories", mock.Anything, "any-user").Return(nil, apiErr)
			},
		},
		{
			name: "traffic views fail",
			arrange: func(f *mockFetcher) {
				f.On("ListRepositories", mock.Anything, "any-user").Return(repos, nil)
				f.On("FetchViewCount", mock.Anything, "any-user", "r0").Return(0, apiErr)
			},
		},
		{
			name: "commit search fails",
			arrange: func(f *mockFetcher) {
				f.On("ListRepositories", mock.Anything, "any-user").Return(repos, nil)
				f.On("FetchViewCount", mock.Anything, "any-user", mock.Anything).Return(1, nil)
				f.On("FetchContributionCount", mock.Anything, "any-user").Return(0, apiErr)
			},
		},
		{
			name: "events fail",
			arrange: func(f *mockFetcher) {
				f.On("ListRepositories", mock.Anything, "any-user").Return(repos, nil)
				f.On("FetchViewCount", mock.Anything, "any-user", mock.Anything).Return(1, nil)
				f.On("FetchContributionCount", mock.Anything, "any-user").Return(3, nil)
				f.On("ListPushedCommits", mock.Anything, "any-user").Return(nil, apiErr)
			},
		},
		{
			name: "commit detail fails",
			arrange: func(f *mockFetcher) {
				f.On("ListRepositories", mock.Anything, "any-user").Return(repos, nil)
				f.On("FetchViewCount", mock.Anything, "any-user", mock.Anything).Return(1, nil)
				f.On("FetchContributionCount", mock.Anything, "any-user").Return(3, nil)
				f.On("ListPushedCommits", mock.Anything, "any-user").Return([]domain.CommitRef{{Repo: "any-user/r0", SHA: "a"}}, nil)
				f.On("FetchLinesChanged", mock.Anything, "any-user", "r0", "a").Return(0, apiErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			tc.arrange(fetcher)

			result, err := NewCollector(fetcher, zerolog.Nop()).Collect(context.Background(), "any-user", testWindow)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrCollection)
			assert.ErrorIs(t, err, apiErr)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCollector_Collect_MalformedEventRepo(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListRepositories", mock.Anything, "any-user").Return([]domain.Repository{}, nil)
	fetcher.On("FetchContributionCount", mock.Anything, "any-user").Return(0, nil)
	fetcher.On("ListPushedCommits", mock.Anything, "any-user").Return([]domain.CommitRef{{Repo: "broken", SHA: "a"}}, nil)

	result, err := NewCollector(fetcher, zerolog.Nop()).Collect(context.Background(), "any-user", testWindow)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrCollection)
	fetcher.AssertNotCalled(t, "FetchLinesChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCollector_Collect_WindowContributions(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListRepositories", mock.Anything, "any-user").Return([]domain.Repository{}, nil)
	fetcher.On("FetchContributionCount", mock.Anything, "any-user").Return(5, nil)
	fetcher.On("ListPushedCommits", mock.Anything, "any-user").Return([]domain.CommitRef{}, nil)
	fetcher.On("FetchWindowContributions", mock.Anything, "any-user", testWindow).Return(17, nil)

	t.Run("enabled", func(t *testing.T) {
		result, err := NewCollector(fetcher, zerolog.Nop(), WithWindowContributions(true)).
			Collect(context.Background(), "any-user", testWindow)
		require.NoError(t, err)
		require.NotNil(t, result.WindowContributions)
		assert.Equal(t, 17, *result.WindowContributions)
		assert.Equal(t, 5, result.ContributionCount)
	})

	t.Run("disabled by default", func(t *testing.T) {
		result, err := NewCollector(fetcher, zerolog.Nop()).Collect(context.Background(), "any-user", testWindow)
		require.NoError(t, err)
		assert.Nil(t, result.WindowContributions)
	})

	fetcher.AssertNumberOfCalls(t, "FetchWindowContributions", 1)
}
