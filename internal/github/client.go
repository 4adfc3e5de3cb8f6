package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/go-github/v33/github"
	"golang.org/x/oauth2"
)

// assertionTTL is the lifetime of the signed assertions (JWTs) this gateway
// uses to authenticate to the GitHub Apps API. GitHub rejects assertions with
// a lifetime in excess of ten minutes.
const assertionTTL = 600 * time.Second

// outboundTimeout bounds every request this gateway makes to the GitHub API.
// A hung token exchange would otherwise hold the shared in-flight exchange
// for its installation open indefinitely, stalling every caller awaiting it.
const outboundTimeout = 10 * time.Second

// createJWT uses the provided appID and ASCII-armored x509 certificate key to
// create a JWT that can be used to authenticate to GitHub APIs as the
// specified App. The assertion is issued at the provided moment and expires
// exactly ten minutes later.
//
// See the following for further details:
// https://docs.github.com/en/developers/apps/authenticating-with-github-apps
func createJWT(appID int64, keyPEM []byte, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(
		jwt.SigningMethodRS256,
		jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(assertionTTL).Unix(),
			Issuer:    strconv.FormatInt(appID, 10),
		},
	).SignedString(key)
}

// newAppsClientFromJWT returns a new client for the GitHub Apps API that will
// authenticate as an App using the provided JWT.
func newAppsClientFromJWT(ctx context.Context, jwt string) *github.AppsService {
	return github.NewClient(newOAuth2HTTPClient(ctx, "", jwt)).Apps
}

// newClientFromInstallationToken returns a new GitHub API client that will
// authenticate as an installation using the provided installation token.
func newClientFromInstallationToken(
	ctx context.Context,
	installationToken string,
) *github.Client {
	return github.NewClient(
		// The "token" type indicates an installation token
		newOAuth2HTTPClient(ctx, "token", installationToken),
	)
}

// newOAuth2HTTPClient returns an HTTP client that authenticates requests
// using the provided bearer credential. Every request made through it is
// bounded by outboundTimeout.
func newOAuth2HTTPClient(
	ctx context.Context,
	tokenType string,
	accessToken string,
) *http.Client {
	httpClient := oauth2.NewClient(
		ctx,
		oauth2.StaticTokenSource(
			&oauth2.Token{
				TokenType:   tokenType,
				AccessToken: accessToken,
			},
		),
	)
	httpClient.Timeout = outboundTimeout
	return httpClient
}
