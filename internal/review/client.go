package review

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// ClientConfig encapsulates configuration for a review agent client.
type ClientConfig struct {
	// AgentURL is the URL of the external code review agent.
	AgentURL string
	// Timeout bounds each request to the review agent. Review generation can
	// be slow, so this is typically much longer than an ordinary API timeout.
	Timeout time.Duration
}

// Client is an interface for components that can obtain a code review report
// for a pull request from an external review agent. The agent itself is
// opaque to this gateway.
type Client interface {
	// Review submits the URL of a pull request to the review agent and
	// returns the agent's review report.
	Review(ctx context.Context, pullRequestURL string) (string, error)
}

type client struct {
	config     ClientConfig
	httpClient *retryablehttp.Client
}

// NewClient returns an implementation of the Client interface that obtains
// review reports over HTTP. Requests that fail with transient errors are
// retried a bounded number of times; report generation is read-only, so
// retrying is safe.
func NewClient(config ClientConfig) Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = config.Timeout
	return &client{
		config:     config,
		httpClient: httpClient,
	}
}

func (c *client) Review(
	ctx context.Context,
	pullRequestURL string,
) (string, error) {
	reqBodyBytes, err := json.Marshal(
		struct {
			PullRequestURL string `json:"pull_request_url"`
		}{
			PullRequestURL: pullRequestURL,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "error marshaling review request")
	}
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.config.AgentURL,
		bytes.NewBuffer(reqBodyBytes),
	)
	if err != nil {
		return "", errors.Wrap(err, "error creating review request")
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(
			err,
			"error submitting pull request %s for review",
			pullRequestURL,
		)
	}
	defer res.Body.Close()
	resBodyBytes, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "error reading review response")
	}
	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf(
			"review agent returned status %d: %s",
			res.StatusCode,
			string(resBodyBytes),
		)
	}
	resBody := struct {
		ReviewReport string `json:"review_report"`
	}{}
	if err = json.Unmarshal(resBodyBytes, &resBody); err != nil {
		return "", errors.Wrap(err, "error unmarshaling review response")
	}
	if resBody.ReviewReport == "" {
		return "", errors.Errorf(
			"review agent returned no report: %s",
			string(resBodyBytes),
		)
	}
	return resBody.ReviewReport, nil
}
