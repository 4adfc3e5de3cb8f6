package github

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testInstallationID int64 = 99

func testTokenCache(
	exchangeCount *int32,
	token string,
	expiresAt time.Time,
) *TokenCache {
	return NewTokenCache(
		App{
			AppID:  42,
			APIKey: []byte("not really used by the mock"),
		},
		&MockAppsClientFactory{
			NewAppsClientFn: func(
				context.Context,
				int64,
				[]byte,
			) (AppsClient, error) {
				return &MockAppsClient{
					CreateInstallationTokenFn: func(
						_ context.Context,
						id int64,
						_ *github.InstallationTokenOptions,
					) (*github.InstallationToken, *github.Response, error) {
						atomic.AddInt32(exchangeCount, 1)
						return &github.InstallationToken{
							Token:     github.String(token),
							ExpiresAt: &expiresAt,
						}, nil, nil
					},
				}, nil
			},
		},
	)
}

func TestGetToken(t *testing.T) {
	var exchangeCount int32
	cache := testTokenCache(
		&exchangeCount,
		"opensesame",
		time.Now().Add(time.Hour),
	)

	token, err := cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Equal(t, "opensesame", token)
	require.Equal(t, int32(1), exchangeCount)

	// A second call should be served from the cache
	token, err = cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Equal(t, "opensesame", token)
	require.Equal(t, int32(1), exchangeCount)

	// ...but a different installation requires its own exchange
	_, err = cache.GetToken(context.Background(), testInstallationID+1)
	require.NoError(t, err)
	require.Equal(t, int32(2), exchangeCount)
}

func TestGetTokenConcurrently(t *testing.T) {
	var exchangeCount int32
	cache := testTokenCache(
		&exchangeCount,
		"opensesame",
		time.Now().Add(time.Hour),
	)

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := cache.GetToken(context.Background(), testInstallationID)
			require.NoError(t, err)
			require.Equal(t, "opensesame", token)
		}()
	}
	wg.Wait()
	// All ten callers should have shared a single exchange
	require.Equal(t, int32(1), exchangeCount)
}

func TestGetTokenAfterExpiry(t *testing.T) {
	var exchangeCount int32
	cache := testTokenCache(
		&exchangeCount,
		"opensesame",
		time.Now().Add(time.Hour),
	)

	_, err := cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Equal(t, int32(1), exchangeCount)

	// Jump the cache's clock past the token's expiry
	cache.nowFn = func() time.Time {
		return time.Now().Add(2 * time.Hour)
	}
	_, err = cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Equal(t, int32(2), exchangeCount)
}

func TestGetTokenWithinExpiryMargin(t *testing.T) {
	var exchangeCount int32
	// The token is technically still valid, but is within the safety margin
	// of expiring, so it must not be handed out.
	cache := testTokenCache(
		&exchangeCount,
		"opensesame",
		time.Now().Add(expiryMargin/2),
	)

	_, err := cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Equal(t, int32(1), exchangeCount)

	_, err = cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Equal(t, int32(2), exchangeCount)
}

func TestGetTokenExchangeError(t *testing.T) {
	cache := NewTokenCache(
		App{AppID: 42},
		&MockAppsClientFactory{
			NewAppsClientFn: func(
				context.Context,
				int64,
				[]byte,
			) (AppsClient, error) {
				return &MockAppsClient{
					CreateInstallationTokenFn: func(
						context.Context,
						int64,
						*github.InstallationTokenOptions,
					) (*github.InstallationToken, *github.Response, error) {
						return nil, nil, errors.New("something went wrong")
					},
				}, nil
			},
		},
	)
	_, err := cache.GetToken(context.Background(), testInstallationID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "something went wrong")
	require.Contains(t, err.Error(), "error creating installation token")
}

func TestSweep(t *testing.T) {
	var exchangeCount int32
	cache := testTokenCache(
		&exchangeCount,
		"opensesame",
		time.Now().Add(time.Hour),
	)
	_, err := cache.GetToken(context.Background(), testInstallationID)
	require.NoError(t, err)
	require.Len(t, cache.tokensByInstallID, 1)

	cache.nowFn = func() time.Time {
		return time.Now().Add(2 * time.Hour)
	}
	cache.sweep()
	require.Empty(t, cache.tokensByInstallID)
}
