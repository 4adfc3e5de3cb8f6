package github

import (
	"context"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"
)

// IssueCommentsClientFactory is an interface for components that can return a
// client for posting comments to GitHub issues (which, for commenting
// purposes, include pull requests) on behalf of a specific installation.
type IssueCommentsClientFactory interface {
	NewIssueCommentsClient(
		ctx context.Context,
		installationID int64,
	) (IssueCommentsClient, error)
}

type issueCommentsClientFactory struct {
	tokenCache *TokenCache
}

// NewIssueCommentsClientFactory returns an implementation of the
// IssueCommentsClientFactory interface that authenticates using installation
// tokens drawn from the provided TokenCache.
func NewIssueCommentsClientFactory(
	tokenCache *TokenCache,
) IssueCommentsClientFactory {
	return &issueCommentsClientFactory{
		tokenCache: tokenCache,
	}
}

func (i *issueCommentsClientFactory) NewIssueCommentsClient(
	ctx context.Context,
	installationID int64,
) (IssueCommentsClient, error) {
	ghClient, err := i.tokenCache.NewInstallationClient(ctx, installationID)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating new client for installation %d",
			installationID,
		)
	}
	return ghClient.Issues, nil
}

// IssueCommentsClient is an interface for the subset of the GitHub Issues API
// used by this gateway-- namely posting comments.
type IssueCommentsClient interface {
	CreateComment(
		ctx context.Context,
		owner string,
		repo string,
		number int,
		comment *github.IssueComment,
	) (*github.IssueComment, *github.Response, error)
}
