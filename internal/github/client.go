// Package github provides the code-hosting integration: repository metadata,
// forks, branches, and file commits through the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"

	gogh "github.com/google/go-github/v68/github"

	"github.com/hackrevamp/revamp/internal/validate"
)

// Client wraps the GitHub API for revamp operations.
type Client struct {
	gh *gogh.Client
}

// NewClient creates a GitHub client authenticated with the given token.
func NewClient(token string) *Client {
	return &Client{
		gh: gogh.NewClient(nil).WithAuthToken(token),
	}
}

// NewClientFrom wraps an existing go-github client, used in tests.
func NewClientFrom(gh *gogh.Client) *Client {
	return &Client{gh: gh}
}

// GetDefaultBranch returns the default branch for a repository.
func (c *Client) GetDefaultBranch(ctx context.Context, repo string) (string, error) {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return "", err
	}

	r, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("getting repository (%s): %w", Classify(err), err)
	}
	branch := r.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	return branch, nil
}

// CreateFork forks a repository into the authenticated user's account and
// returns the fork's "owner/repo" name. GitHub forks asynchronously, so the
// API answers 202; go-github surfaces that as AcceptedError and we treat it
// as success.
func (c *Client) CreateFork(ctx context.Context, repo string) (string, error) {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return "", err
	}

	fork, _, err := c.gh.Repositories.CreateFork(ctx, owner, name, nil)
	if err != nil {
		var accepted *gogh.AcceptedError
		if !errors.As(err, &accepted) {
			return "", fmt.Errorf("forking %s (%s): %w", repo, Classify(err), err)
		}
	}
	if fork != nil && fork.GetFullName() != "" {
		return fork.GetFullName(), nil
	}

	// Fork name is predictable when the response body was not materialized.
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("resolving fork owner (%s): %w", Classify(err), err)
	}
	return user.GetLogin() + "/" + name, nil
}

// CreateBranch creates a branch from the head of another branch.
func (c *Client) CreateBranch(ctx context.Context, repo, branch, from string) error {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return err
	}

	base, _, err := c.gh.Git.GetRef(ctx, owner, name, "refs/heads/"+from)
	if err != nil {
		return fmt.Errorf("resolving base branch %s (%s): %w", from, Classify(err), err)
	}

	_, _, err = c.gh.Git.CreateRef(ctx, owner, name, &gogh.Reference{
		Ref:    gogh.Ptr("refs/heads/" + branch),
		Object: base.Object,
	})
	if err != nil {
		return fmt.Errorf("creating branch %s (%s): %w", branch, Classify(err), err)
	}
	return nil
}

// GetFile returns a file's decoded content and blob SHA at the given ref.
func (c *Client) GetFile(ctx context.Context, repo, path, ref string) (content, sha string, err error) {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return "", "", err
	}

	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path,
		&gogh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", "", fmt.Errorf("reading %s (%s): %w", path, Classify(err), err)
	}
	if file == nil {
		return "", "", fmt.Errorf("reading %s: path is a directory", path)
	}

	content, err = file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return content, file.GetSHA(), nil
}

// PutFile creates or updates a file on a branch. Each call produces one
// commit; sha must be the current blob SHA for updates and empty for
// creations. Returns the commit SHA.
func (c *Client) PutFile(ctx context.Context, repo, path, branch, message, content, sha string) (string, error) {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return "", err
	}

	opts := &gogh.RepositoryContentFileOptions{
		Message: gogh.Ptr(message),
		Content: []byte(content),
		Branch:  gogh.Ptr(branch),
	}
	if sha != "" {
		opts.SHA = gogh.Ptr(sha)
	}

	resp, _, err := c.gh.Repositories.CreateFile(ctx, owner, name, path, opts)
	if err != nil {
		return "", fmt.Errorf("writing %s (%s): %w", path, Classify(err), err)
	}
	return resp.GetSHA(), nil
}

// DeleteFile removes a file on a branch, producing one commit.
func (c *Client) DeleteFile(ctx context.Context, repo, path, branch, message, sha string) (string, error) {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return "", err
	}

	resp, _, err := c.gh.Repositories.DeleteFile(ctx, owner, name, path, &gogh.RepositoryContentFileOptions{
		Message: gogh.Ptr(message),
		Branch:  gogh.Ptr(branch),
		SHA:     gogh.Ptr(sha),
	})
	if err != nil {
		return "", fmt.Errorf("deleting %s (%s): %w", path, Classify(err), err)
	}
	return resp.GetSHA(), nil
}
