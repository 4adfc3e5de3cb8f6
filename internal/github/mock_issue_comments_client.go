package github

import (
	"context"

	"github.com/google/go-github/v33/github"
)

type MockIssueCommentsClientFactory struct {
	NewIssueCommentsClientFn func(
		ctx context.Context,
		installationID int64,
	) (IssueCommentsClient, error)
}

func (m *MockIssueCommentsClientFactory) NewIssueCommentsClient(
	ctx context.Context,
	installationID int64,
) (IssueCommentsClient, error) {
	return m.NewIssueCommentsClientFn(ctx, installationID)
}

type MockIssueCommentsClient struct {
	CreateCommentFn func(
		ctx context.Context,
		owner string,
		repo string,
		number int,
		comment *github.IssueComment,
	) (*github.IssueComment, *github.Response, error)
}

func (m *MockIssueCommentsClient) CreateComment(
	ctx context.Context,
	owner string,
	repo string,
	number int,
	comment *github.IssueComment,
) (*github.IssueComment, *github.Response, error) {
	return m.CreateCommentFn(ctx, owner, repo, number, comment)
}
