package webhooks

import (
	"context"
	"fmt"
	"log"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"

	ghlib "github.com/jpgcp/code-review-gateway/internal/github"
	"github.com/jpgcp/code-review-gateway/internal/review"
)

// ReviewHandlersConfig encapsulates configuration for the code review
// handlers.
type ReviewHandlersConfig struct {
	// BotLogin is the login of this gateway's own bot account. Events whose
	// actor matches this login are the gateway's own doing and are never
	// responded to. Without this guard, the gateway's reply to a comment
	// would itself arrive as a new issue_comment event, and so on forever.
	BotLogin string
}

// ReviewHandlers bundles the handlers that respond to pull request and
// comment activity-- welcoming PR authors, soliciting reviews from the
// external review agent, and acknowledging comments.
type ReviewHandlers struct {
	config                ReviewHandlersConfig
	commentsClientFactory ghlib.IssueCommentsClientFactory
	// reviewClient may be nil, in which case pull requests still receive a
	// welcome comment, but no review is solicited.
	reviewClient review.Client
}

// NewReviewHandlers returns a ReviewHandlers that posts comments using
// clients from the provided factory and solicits reviews from the provided
// review agent client (which may be nil to disable review solicitation).
func NewReviewHandlers(
	config ReviewHandlersConfig,
	commentsClientFactory ghlib.IssueCommentsClientFactory,
	reviewClient review.Client,
) *ReviewHandlers {
	return &ReviewHandlers{
		config:                config,
		commentsClientFactory: commentsClientFactory,
		reviewClient:          reviewClient,
	}
}

// RegisterTo registers all of this component's handlers with the provided
// Router.
func (r *ReviewHandlers) RegisterTo(router *Router) {
	router.Register("pull_request", "opened", r.HandlePullRequestOpened)
	router.Register("issue_comment", "created", r.HandleIssueCommentCreated)
}

// HandlePullRequestOpened welcomes the author of a newly opened pull request
// with a comment, then solicits a review report from the external review
// agent and posts it as a second comment.
func (r *ReviewHandlers) HandlePullRequestOpened(
	ctx context.Context,
	event Event,
) error {
	pre, ok := event.Payload.(*github.PullRequestEvent)
	if !ok {
		return errors.Errorf(
			"event payload was an unexpected type %T",
			event.Payload,
		)
	}
	author := pre.GetPullRequest().GetUser().GetLogin()
	if author == r.config.BotLogin {
		// Our own PR; do not respond to ourselves
		return nil
	}

	commentsClient, err := r.commentsClientFactory.NewIssueCommentsClient(
		ctx,
		event.InstallationID,
	)
	if err != nil {
		return errors.Wrapf(
			err,
			"error creating comments client for installation %d",
			event.InstallationID,
		)
	}

	repoOwner := pre.GetRepo().GetOwner().GetLogin()
	repoName := pre.GetRepo().GetName()
	prNumber := pre.GetPullRequest().GetNumber()

	welcome := fmt.Sprintf(
		"Thanks for opening this PR, @%s! We will review it soon.",
		author,
	)
	if err = postComment(
		ctx,
		commentsClient,
		repoOwner,
		repoName,
		prNumber,
		welcome,
	); err != nil {
		return err
	}

	if r.reviewClient == nil {
		return nil
	}

	report, err := r.reviewClient.Review(
		ctx,
		pre.GetPullRequest().GetHTMLURL(),
	)
	if err != nil {
		// The review agent being unavailable shouldn't fail the delivery.
		// Post the customary apology instead.
		log.Println(err)
		report = "failed to get review.., please try again later."
	}
	return postComment(
		ctx,
		commentsClient,
		repoOwner,
		repoName,
		prNumber,
		report,
	)
}

// HandleIssueCommentCreated acknowledges a new comment on an issue or pull
// request.
func (r *ReviewHandlers) HandleIssueCommentCreated(
	ctx context.Context,
	event Event,
) error {
	ice, ok := event.Payload.(*github.IssueCommentEvent)
	if !ok {
		return errors.Errorf(
			"event payload was an unexpected type %T",
			event.Payload,
		)
	}
	author := ice.GetComment().GetUser().GetLogin()
	if author == r.config.BotLogin {
		// Our own comment; do not respond to ourselves
		return nil
	}

	commentsClient, err := r.commentsClientFactory.NewIssueCommentsClient(
		ctx,
		event.InstallationID,
	)
	if err != nil {
		return errors.Wrapf(
			err,
			"error creating comments client for installation %d",
			event.InstallationID,
		)
	}
	return postComment(
		ctx,
		commentsClient,
		ice.GetRepo().GetOwner().GetLogin(),
		ice.GetRepo().GetName(),
		ice.GetIssue().GetNumber(),
		fmt.Sprintf("Hello @%s, thanks for the comment!", author),
	)
}

// postComment posts a single comment to the main timeline of an issue or pull
// request. (In GitHub's data model, a pull request IS an issue with some
// extra attributes, which is why the issue comments API serves both.)
func postComment(
	ctx context.Context,
	commentsClient ghlib.IssueCommentsClient,
	repoOwner string,
	repoName string,
	number int,
	body string,
) error {
	_, _, err := commentsClient.CreateComment(
		ctx,
		repoOwner,
		repoName,
		number,
		&github.IssueComment{
			Body: github.String(body),
		},
	)
	return errors.Wrapf(
		err,
		"error posting comment to %s/%s#%d",
		repoOwner,
		repoName,
		number,
	)
}
