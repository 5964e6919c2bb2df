package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/samber/lo"
)

const NAME = "github"

type TemplateRepo struct {
	Owner string `toml:"owner"`
	Name  string `toml:"name"`
}

func (t TemplateRepo) String() string {
	return t.Owner + "/" + t.Name
}

type Repository struct {
	FullName string
	HTMLURL  string
	CloneURL string
}

type Client struct {
	gh       *github.Client
	owner    string
	template TemplateRepo
	private  bool
}

type Option func(c *Client)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		if u, err := url.Parse(base); err == nil {
			c.gh.BaseURL = u
		}
	}
}

func WithPrivate(private bool) Option {
	return func(c *Client) {
		c.private = private
	}
}

// New returns a client creating repositories under owner. An empty owner means the token's user.
func New(token, owner string, template TemplateRepo, opts ...Option) *Client {
	c := &Client{
		gh:       github.NewClient(nil).WithAuthToken(token),
		owner:    owner,
		template: template,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var invalidRepoChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// RepoName builds "<projectName>-<millis>", replacing characters GitHub does not accept.
func RepoName(projectName string, millis int64) string {
	name := strings.Trim(invalidRepoChars.ReplaceAllString(strings.TrimSpace(projectName), "-"), "-")
	if name == "" {
		name = "workspace"
	}
	return fmt.Sprintf("%s-%d", name, millis)
}

func (c *Client) CreateFromTemplate(ctx context.Context, name, description string) (*Repository, error) {
	repo, _, err := c.gh.Repositories.CreateFromTemplate(ctx, c.template.Owner, c.template.Name, &github.TemplateRepoRequest{
		Name:        github.String(name),
		Owner:       lo.EmptyableToPtr(c.owner),
		Description: lo.EmptyableToPtr(description),
		Private:     github.Bool(c.private),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s from template %s: %w", name, c.template, err)
	}

	return &Repository{
		FullName: repo.GetFullName(),
		HTMLURL:  repo.GetHTMLURL(),
		CloneURL: repo.GetCloneURL(),
	}, nil
}
