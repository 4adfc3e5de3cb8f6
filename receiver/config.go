package main

import (
	"io/ioutil"
	"time"

	"github.com/brigadecore/brigade-foundations/file"
	"github.com/brigadecore/brigade-foundations/http"
	"github.com/pkg/errors"

	ghlib "github.com/jpgcp/code-review-gateway/internal/github"
	"github.com/jpgcp/code-review-gateway/internal/os"
	"github.com/jpgcp/code-review-gateway/internal/review"
	"github.com/jpgcp/code-review-gateway/receiver/internal/webhooks"
)

// githubAppConfig populates the details of the GitHub App on whose behalf this
// gateway acts from environment variables.
func githubAppConfig() (ghlib.App, error) {
	app := ghlib.App{}
	appID, err := os.GetRequiredIntFromEnvVar("GITHUB_APP_ID")
	if err != nil {
		return app, err
	}
	app.AppID = int64(appID)
	apiKeyPath, err := os.GetRequiredEnvVar("GITHUB_API_KEY_PATH")
	if err != nil {
		return app, err
	}
	var exists bool
	if exists, err = file.Exists(apiKeyPath); err != nil {
		return app, err
	}
	if !exists {
		return app, errors.Errorf("file %s does not exist", apiKeyPath)
	}
	if app.APIKey, err = ioutil.ReadFile(apiKeyPath); err != nil {
		return app, err
	}
	// Unsigned deliveries are never accepted, so an empty shared secret is a
	// fatal configuration error rather than a silent downgrade.
	if app.SharedSecret, err =
		os.GetRequiredEnvVar("GITHUB_APP_SHARED_SECRET"); err != nil {
		return app, err
	}
	app.BotLogin, err = os.GetRequiredEnvVar("BOT_LOGIN")
	return app, err
}

// reviewClientConfig populates configuration for the review agent client from
// environment variables. If REVIEW_AGENT_URL is left unset, review delegation
// is simply disabled and the returned config's AgentURL is empty.
func reviewClientConfig() (review.ClientConfig, error) {
	config := review.ClientConfig{
		AgentURL: os.GetEnvVar("REVIEW_AGENT_URL", ""),
	}
	var err error
	config.Timeout, err =
		os.GetDurationFromEnvVar("REVIEW_AGENT_TIMEOUT", 2*time.Minute)
	return config, err
}

// signatureVerificationFilterConfig populates configuration for the signature
// verification filter from environment variables.
func signatureVerificationFilterConfig() (
	webhooks.SignatureVerificationFilterConfig,
	error,
) {
	config := webhooks.SignatureVerificationFilterConfig{}
	sharedSecret, err := os.GetRequiredEnvVar("GITHUB_APP_SHARED_SECRET")
	if err != nil {
		return config, err
	}
	config.SharedSecret = []byte(sharedSecret)
	return config, nil
}

// serverConfig populates configuration for the HTTP/S server from environment
// variables.
func serverConfig() (http.ServerConfig, error) {
	config := http.ServerConfig{}
	var err error
	config.Port, err = os.GetIntFromEnvVar("RECEIVER_PORT", 8080)
	if err != nil {
		return config, err
	}
	config.TLSEnabled, err = os.GetBoolFromEnvVar("TLS_ENABLED", false)
	if err != nil {
		return config, err
	}
	if config.TLSEnabled {
		config.TLSCertPath, err = os.GetRequiredEnvVar("TLS_CERT_PATH")
		if err != nil {
			return config, err
		}
		config.TLSKeyPath, err = os.GetRequiredEnvVar("TLS_KEY_PATH")
		if err != nil {
			return config, err
		}
	}
	return config, nil
}
