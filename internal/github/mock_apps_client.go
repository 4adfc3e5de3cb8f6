package github

import (
	"context"

	"github.com/google/go-github/v33/github"
)

type MockAppsClientFactory struct {
	NewAppsClientFn func(
		ctx context.Context,
		appID int64,
		apiKey []byte,
	) (AppsClient, error)
}

func (m *MockAppsClientFactory) NewAppsClient(
	ctx context.Context,
	appID int64,
	apiKey []byte,
) (AppsClient, error) {
	return m.NewAppsClientFn(ctx, appID, apiKey)
}

type MockAppsClient struct {
	CreateInstallationTokenFn func(
		ctx context.Context,
		id int64,
		opts *github.InstallationTokenOptions,
	) (*github.InstallationToken, *github.Response, error)
}

func (m *MockAppsClient) CreateInstallationToken(
	ctx context.Context,
	id int64,
	opts *github.InstallationTokenOptions,
) (*github.InstallationToken, *github.Response, error) {
	return m.CreateInstallationTokenFn(ctx, id, opts)
}
