package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
)

const searchPageSize = 100

// GitHubSource is a LiveSource backend over the GitHub repository search API.
type GitHubSource struct {
	client *github.Client
	token  string
	now    func() time.Time
}

// NewGitHubSource builds an authenticated search client.  An empty token
// yields a source which reports itself as uncredentialed.
func NewGitHubSource(token string) *GitHubSource {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	gs := &GitHubSource{
		client: github.NewClient(httpClient),
		token:  token,
		now:    time.Now,
	}
	return gs
}

// WithBaseURL points the client at an alternate API root, such as a GitHub
// Enterprise install.
func (gs *GitHubSource) WithBaseURL(baseURL string) (*GitHubSource, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %s", baseURL, err)
	}
	gs.client.BaseURL = u
	return gs, nil
}

func (gs *GitHubSource) Credentialed() bool {
	return gs.token != ""
}

func (gs *GitHubSource) SearchPage(ctx context.Context, q Query, page int) (*Page, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: searchPageSize,
		},
	}
	expr := BuildSearchQuery(q, gs.now())

	result, resp, err := gs.client.Search.Repositories(ctx, expr, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "searching repositories for %q (page %v)", q.Text, page)
	}

	p := &Page{
		Items: make([]domain.RepoInfo, 0, len(result.Repositories)),
	}
	for _, repo := range result.Repositories {
		p.Items = append(p.Items, repoInfo(repo))
	}
	if resp != nil {
		p.NextPage = resp.NextPage
		p.Quota = Quota{
			Remaining: resp.Rate.Remaining,
			Reset:     resp.Rate.Reset.Time,
		}
	}
	return p, nil
}

func repoInfo(repo *github.Repository) domain.RepoInfo {
	info := domain.RepoInfo{
		Name:        repo.GetName(),
		Owner:       repo.GetOwner().GetLogin(),
		URL:         repo.GetHTMLURL(),
		CloneURL:    repo.GetCloneURL(),
		Description: repo.GetDescription(),
		Topics:      repo.Topics,
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		Watchers:    repo.GetWatchersCount(),
		Language:    repo.GetLanguage(),
		CreatedAt:   repo.GetCreatedAt().Time,
		UpdatedAt:   repo.GetUpdatedAt().Time,
		PushedAt:    repo.GetPushedAt().Time,
	}
	return info
}

// BuildSearchQuery renders q in GitHub search syntax.
func BuildSearchQuery(q Query, now time.Time) string {
	parts := []string{}
	if text := strings.TrimSpace(q.Text); text != "" {
		parts = append(parts, text)
	}
	for _, lang := range q.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			parts = append(parts, "language:"+lang)
		}
	}
	if q.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%v", q.MinStars))
	}
	if since, ok := DateRangeStart(q.DateRange, now); ok {
		parts = append(parts, "pushed:>="+since.Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

// DateRangeStart maps a named range onto the earliest push date it admits.
func DateRangeStart(dateRange string, now time.Time) (time.Time, bool) {
	switch strings.ToLower(dateRange) {
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, -1, 0), true
	case "quarter":
		return now.AddDate(0, -3, 0), true
	case "year":
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
