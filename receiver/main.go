package main

import (
	"log"
	"net/http"

	libHTTP "github.com/brigadecore/brigade-foundations/http"
	"github.com/brigadecore/brigade-foundations/signals"
	"github.com/brigadecore/brigade-foundations/version"
	"github.com/gorilla/mux"

	ghlib "github.com/jpgcp/code-review-gateway/internal/github"
	"github.com/jpgcp/code-review-gateway/internal/review"
	"github.com/jpgcp/code-review-gateway/receiver/internal/webhooks"
)

func main() {

	log.Printf(
		"Starting Code Review Gateway Receiver -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	ctx := signals.Context()

	app, err := githubAppConfig()
	if err != nil {
		log.Fatal(err)
	}

	tokenCache := ghlib.NewTokenCache(app, ghlib.NewAppsClientFactory())
	// Periodically evicts expired installation tokens
	go tokenCache.Run(ctx)

	var reviewClient review.Client
	{
		var config review.ClientConfig
		config, err = reviewClientConfig()
		if err != nil {
			log.Fatal(err)
		}
		if config.AgentURL == "" {
			log.Println(
				"REVIEW_AGENT_URL not set; pull requests will be acknowledged " +
					"but not reviewed",
			)
		} else {
			reviewClient = review.NewClient(config)
		}
	}

	var webhooksService webhooks.Service
	{
		router := webhooks.NewRouter()
		webhooks.NewReviewHandlers(
			webhooks.ReviewHandlersConfig{
				BotLogin: app.BotLogin,
			},
			ghlib.NewIssueCommentsClientFactory(tokenCache),
			reviewClient,
		).RegisterTo(router)
		webhooksService = webhooks.NewService(router)
	}

	var signatureVerificationFilter libHTTP.Filter
	{
		config, err := signatureVerificationFilterConfig()
		if err != nil {
			log.Fatal(err)
		}
		signatureVerificationFilter =
			webhooks.NewSignatureVerificationFilter(config)
	}

	var server libHTTP.Server
	{
		handler := webhooks.NewHandler(webhooksService)
		router := mux.NewRouter()
		router.StrictSlash(true)
		router.Handle(
			"/events",
			http.HandlerFunc( // Make a handler from a function
				signatureVerificationFilter.Decorate(handler.ServeHTTP),
			),
		).Methods(http.MethodPost)
		router.HandleFunc("/healthz", libHTTP.Healthz).Methods(http.MethodGet)
		serverConfig, err := serverConfig()
		if err != nil {
			log.Fatal(err)
		}
		server = libHTTP.NewServer(router, &serverConfig)
	}

	log.Println(
		server.ListenAndServe(ctx),
	)
}
