package srv

import (
	"context"
	"log/slog"
	"os"

	"github.com/quka-ai/workbench/pkg/github"
)

type RepoCreator interface {
	CreateFromTemplate(ctx context.Context, name, description string) (*github.Repository, error)
}

type GitHubConfig struct {
	Token    string              `toml:"token"`
	Owner    string              `toml:"owner"`
	Template github.TemplateRepo `toml:"template"`
	Private  bool                `toml:"private"`
	Endpoint string              `toml:"endpoint"` // GitHub Enterprise api url
}

func (c *GitHubConfig) FromENV() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("GITHUB_OWNER"); v != "" {
		c.Owner = v
	}
	if v := os.Getenv("GITHUB_TEMPLATE_OWNER"); v != "" {
		c.Template.Owner = v
	}
	if v := os.Getenv("GITHUB_TEMPLATE_REPO"); v != "" {
		c.Template.Name = v
	}
}

// ApplyGitHub leaves the repo creator unset without a token, workspaces then start without a repository.
func ApplyGitHub(cfg GitHubConfig) ApplyFunc {
	return func(s *Srv) {
		if cfg.Token == "" || cfg.Template.Owner == "" || cfg.Template.Name == "" {
			slog.Warn("github is not configured, repositories will not be created", slog.String("component", "srv"))
			return
		}
		opts := []github.Option{github.WithPrivate(cfg.Private)}
		if cfg.Endpoint != "" {
			opts = append(opts, github.WithBaseURL(cfg.Endpoint))
		}
		s.github = github.New(cfg.Token, cfg.Owner, cfg.Template, opts...)
	}
}

func WithRepoCreator(r RepoCreator) ApplyFunc {
	return func(s *Srv) {
		s.github = r
	}
}
