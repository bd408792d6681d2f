package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Adapter implements domain.CommitInfo with go-git. Paths may point anywhere
// inside a work tree; the enclosing .git directory is located automatically.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}

func (a *Adapter) IsGitRepo(path string) bool {
	_, err := open(path)
	return err == nil
}

// CommitHash returns the full SHA of HEAD.
func (a *Adapter) CommitHash(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// RemoteURL returns the first URL of the origin remote, or "" when there is
// no origin.
func (a *Adapter) RemoteURL(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err == git.ErrRemoteNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading origin: %w", err)
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		return urls[0], nil
	}
	return "", nil
}
