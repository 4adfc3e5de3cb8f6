package github

import (
	"context"
	"time"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"
)

// AppsClientFactory is an interface for components that can return a client
// for the GitHub Apps API that authenticates as a specific App using a signed
// assertion minted from the App's private key.
type AppsClientFactory interface {
	NewAppsClient(
		ctx context.Context,
		appID int64,
		apiKey []byte,
	) (AppsClient, error)
}

type appsClientFactory struct{}

// NewAppsClientFactory returns an implementation of the AppsClientFactory
// interface that mints a fresh assertion per client.
func NewAppsClientFactory() AppsClientFactory {
	return &appsClientFactory{}
}

func (a *appsClientFactory) NewAppsClient(
	ctx context.Context,
	appID int64,
	apiKey []byte,
) (AppsClient, error) {
	jwt, err := createJWT(appID, apiKey, time.Now())
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error getting signed JSON web token for app %d",
			appID,
		)
	}
	return newAppsClientFromJWT(ctx, jwt), nil
}

// AppsClient is an interface for the subset of the GitHub Apps API used by
// this gateway-- namely exchanging a signed assertion for an installation
// token.
type AppsClient interface {
	CreateInstallationToken(
		ctx context.Context,
		id int64,
		opts *github.InstallationTokenOptions,
	) (*github.InstallationToken, *github.Response, error)
}
