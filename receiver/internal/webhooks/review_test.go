package webhooks

import (
	"context"
	"testing"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	ghlib "github.com/jpgcp/code-review-gateway/internal/github"
	"github.com/jpgcp/code-review-gateway/internal/review"
)

const testBotLogin = "review-gateway[bot]"

// postedComment records a single comment posted through the mock comments
// client.
type postedComment struct {
	repoOwner string
	repoName  string
	number    int
	body      string
}

func testCommentsClientFactory(
	clientsCreated *int,
	posted *[]postedComment,
) ghlib.IssueCommentsClientFactory {
	return &ghlib.MockIssueCommentsClientFactory{
		NewIssueCommentsClientFn: func(
			context.Context,
			int64,
		) (ghlib.IssueCommentsClient, error) {
			*clientsCreated++
			return &ghlib.MockIssueCommentsClient{
				CreateCommentFn: func(
					_ context.Context,
					owner string,
					repo string,
					number int,
					comment *github.IssueComment,
				) (*github.IssueComment, *github.Response, error) {
					*posted = append(
						*posted,
						postedComment{
							repoOwner: owner,
							repoName:  repo,
							number:    number,
							body:      comment.GetBody(),
						},
					)
					return comment, nil, nil
				},
			}, nil
		},
	}
}

func testPullRequestEvent(author string) Event {
	return Event{
		Type:           "pull_request",
		Action:         "opened",
		InstallationID: 42,
		Payload: &github.PullRequestEvent{
			Action: github.String("opened"),
			PullRequest: &github.PullRequest{
				Number:  github.Int(5),
				HTMLURL: github.String("https://github.com/example/repo/pull/5"),
				User: &github.User{
					Login: github.String(author),
				},
			},
			Repo: &github.Repository{
				Name: github.String("repo"),
				Owner: &github.User{
					Login: github.String("example"),
				},
			},
		},
	}
}

func testIssueCommentEvent(author string) Event {
	return Event{
		Type:           "issue_comment",
		Action:         "created",
		InstallationID: 42,
		Payload: &github.IssueCommentEvent{
			Action: github.String("created"),
			Comment: &github.IssueComment{
				User: &github.User{
					Login: github.String(author),
				},
			},
			Issue: &github.Issue{
				Number: github.Int(7),
			},
			Repo: &github.Repository{
				Name: github.String("repo"),
				Owner: &github.User{
					Login: github.String("example"),
				},
			},
		},
	}
}

func TestHandlePullRequestOpened(t *testing.T) {
	testCases := []struct {
		name         string
		event        Event
		reviewClient review.Client
		assertions   func(
			clientsCreated int,
			posted []postedComment,
			err error,
		)
	}{
		{
			name:  "wrong payload type",
			event: testIssueCommentEvent("alice"),
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "unexpected type")
				require.Zero(t, clientsCreated)
			},
		},
		{
			name:  "PR opened by the gateway's own bot",
			event: testPullRequestEvent(testBotLogin),
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.NoError(t, err)
				// The loop guard must kick in before any client is even
				// created, so no token exchange can occur either
				require.Zero(t, clientsCreated)
				require.Empty(t, posted)
			},
		},
		{
			name:  "no review client configured",
			event: testPullRequestEvent("alice"),
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.NoError(t, err)
				require.Equal(t, 1, clientsCreated)
				require.Len(t, posted, 1)
				require.Equal(t, "example", posted[0].repoOwner)
				require.Equal(t, "repo", posted[0].repoName)
				require.Equal(t, 5, posted[0].number)
				require.Contains(t, posted[0].body, "@alice")
			},
		},
		{
			name:  "review succeeds",
			event: testPullRequestEvent("alice"),
			reviewClient: &review.MockClient{
				ReviewFn: func(
					_ context.Context,
					pullRequestURL string,
				) (string, error) {
					require.Equal(
						t,
						"https://github.com/example/repo/pull/5",
						pullRequestURL,
					)
					return "LGTM with nits", nil
				},
			},
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.NoError(t, err)
				require.Len(t, posted, 2)
				require.Contains(t, posted[0].body, "@alice")
				require.Equal(t, "LGTM with nits", posted[1].body)
			},
		},
		{
			name:  "review fails",
			event: testPullRequestEvent("alice"),
			reviewClient: &review.MockClient{
				ReviewFn: func(context.Context, string) (string, error) {
					return "", errors.New("agent is on holiday")
				},
			},
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				// An unavailable review agent must not fail the delivery
				require.NoError(t, err)
				require.Len(t, posted, 2)
				require.Contains(t, posted[1].body, "failed to get review")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clientsCreated := 0
			posted := []postedComment{}
			handlers := NewReviewHandlers(
				ReviewHandlersConfig{
					BotLogin: testBotLogin,
				},
				testCommentsClientFactory(&clientsCreated, &posted),
				testCase.reviewClient,
			)
			err := handlers.HandlePullRequestOpened(
				context.Background(),
				testCase.event,
			)
			testCase.assertions(clientsCreated, posted, err)
		})
	}
}

func TestHandleIssueCommentCreated(t *testing.T) {
	testCases := []struct {
		name       string
		event      Event
		assertions func(
			clientsCreated int,
			posted []postedComment,
			err error,
		)
	}{
		{
			name:  "wrong payload type",
			event: testPullRequestEvent("alice"),
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "unexpected type")
				require.Zero(t, clientsCreated)
			},
		},
		{
			name:  "comment posted by the gateway's own bot",
			event: testIssueCommentEvent(testBotLogin),
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.NoError(t, err)
				require.Zero(t, clientsCreated)
				require.Empty(t, posted)
			},
		},
		{
			name:  "comment posted by someone else",
			event: testIssueCommentEvent("bob"),
			assertions: func(
				clientsCreated int,
				posted []postedComment,
				err error,
			) {
				require.NoError(t, err)
				require.Equal(t, 1, clientsCreated)
				require.Len(t, posted, 1)
				require.Equal(t, 7, posted[0].number)
				require.Equal(t, "Hello @bob, thanks for the comment!", posted[0].body)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clientsCreated := 0
			posted := []postedComment{}
			handlers := NewReviewHandlers(
				ReviewHandlersConfig{
					BotLogin: testBotLogin,
				},
				testCommentsClientFactory(&clientsCreated, &posted),
				nil,
			)
			err := handlers.HandleIssueCommentCreated(
				context.Background(),
				testCase.event,
			)
			testCase.assertions(clientsCreated, posted, err)
		})
	}
}
