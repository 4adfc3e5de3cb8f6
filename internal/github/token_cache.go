package github

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	// expiryMargin is subtracted from a cached token's expiry when judging
	// whether it is still usable. A token within this margin of expiring is
	// treated as already expired so that it cannot expire mid-request.
	expiryMargin = 60 * time.Second

	defaultSweepInterval = 10 * time.Minute
)

// installationToken is a scoped, time-limited bearer credential usable to act
// as the App within a given installation.
type installationToken struct {
	token     string
	expiresAt time.Time
}

// TokenCache obtains installation tokens from the GitHub Apps API and caches
// them, keyed by installation ID, until shortly before they expire. Callers
// therefore do not pay for a JWT mint and token exchange on every API call.
// It is safe for concurrent use, and concurrent callers requiring a token for
// the same installation share a single token exchange rather than initiating
// duplicate ones.
type TokenCache struct {
	app               App
	appsClientFactory AppsClientFactory
	tokensByInstallMu sync.RWMutex
	tokensByInstallID map[int64]installationToken
	exchangeGroup     singleflight.Group
	// Overridable for testing purposes
	nowFn func() time.Time
}

// NewTokenCache returns a TokenCache that exchanges assertions signed with
// the provided App's private key for installation tokens. Apps API clients
// are obtained through the provided factory.
func NewTokenCache(app App, appsClientFactory AppsClientFactory) *TokenCache {
	return &TokenCache{
		app:               app,
		appsClientFactory: appsClientFactory,
		tokensByInstallID: map[int64]installationToken{},
		nowFn:             time.Now,
	}
}

// GetToken returns an installation token for the given installation ID. A
// cached token is returned without network access if it is not within
// expiryMargin of expiring; otherwise a fresh assertion is minted and
// exchanged for a new token, which is cached and returned.
func (t *TokenCache) GetToken(
	ctx context.Context,
	installationID int64,
) (string, error) {
	if token, ok := t.getCachedToken(installationID); ok {
		return token, nil
	}
	// Collapse concurrent exchanges for the same installation into one.
	// Duplicate exchanges would be harmless, but each one burns quota.
	token, err, _ := t.exchangeGroup.Do(
		strconv.FormatInt(installationID, 10),
		func() (interface{}, error) {
			// Another caller may have completed an exchange between our cache
			// check and acquisition of the flight.
			if token, ok := t.getCachedToken(installationID); ok {
				return token, nil
			}
			return t.exchangeToken(ctx, installationID)
		},
	)
	if err != nil {
		return "", err
	}
	return token.(string), nil // nolint: forcetypeassert
}

// NewInstallationClient returns a GitHub API client that authenticates as the
// specified installation using a token from the cache.
func (t *TokenCache) NewInstallationClient(
	ctx context.Context,
	installationID int64,
) (*github.Client, error) {
	token, err := t.GetToken(ctx, installationID)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error negotiating an installation token for installation %d",
			installationID,
		)
	}
	return newClientFromInstallationToken(ctx, token), nil
}

// Run periodically sweeps expired tokens out of the cache until the provided
// context is canceled. Expired tokens are also discarded lazily on read, so
// running the sweeper is optional; it merely keeps tokens for dormant
// installations from lingering.
func (t *TokenCache) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *TokenCache) getCachedToken(installationID int64) (string, bool) {
	t.tokensByInstallMu.RLock()
	defer t.tokensByInstallMu.RUnlock()
	token, ok := t.tokensByInstallID[installationID]
	if !ok || !t.usable(token) {
		return "", false
	}
	return token.token, true
}

func (t *TokenCache) exchangeToken(
	ctx context.Context,
	installationID int64,
) (string, error) {
	appsClient, err := t.appsClientFactory.NewAppsClient(
		ctx,
		t.app.AppID,
		t.app.APIKey,
	)
	if err != nil {
		return "", err
	}
	newToken, _, err := appsClient.CreateInstallationToken(
		ctx,
		installationID,
		&github.InstallationTokenOptions{},
	)
	if err != nil {
		return "", errors.Wrapf(
			err,
			"error creating installation token for installation %d",
			installationID,
		)
	}
	t.tokensByInstallMu.Lock()
	defer t.tokensByInstallMu.Unlock()
	t.tokensByInstallID[installationID] = installationToken{
		token:     newToken.GetToken(),
		expiresAt: newToken.GetExpiresAt(),
	}
	return newToken.GetToken(), nil
}

func (t *TokenCache) sweep() {
	t.tokensByInstallMu.Lock()
	defer t.tokensByInstallMu.Unlock()
	for installationID, token := range t.tokensByInstallID {
		if !t.usable(token) {
			delete(t.tokensByInstallID, installationID)
		}
	}
}

func (t *TokenCache) usable(token installationToken) bool {
	return t.nowFn().Before(token.expiresAt.Add(-expiryMargin))
}
