package webhooks

import (
	"context"

	"github.com/google/go-github/v33/github"
	"github.com/pkg/errors"
)

// Event is a webhook (event) from GitHub that has been verified and parsed.
// It is immutable after parsing and is discarded once handling completes.
type Event struct {
	// Type is the event type from the X-GitHub-Event header, e.g.
	// "pull_request".
	Type string
	// Action further qualifies the event type, e.g. "opened". Not all event
	// types carry an action; for those that don't, this is empty.
	Action string
	// DeliveryID uniquely identifies this delivery of the event.
	DeliveryID string
	// InstallationID identifies the App installation the event pertains to.
	// Handlers use it to obtain installation-scoped API clients.
	InstallationID int64
	// Payload is the parsed payload-- one of the event types from the
	// go-github library.
	Payload interface{}
}

// actionHolder is implemented by the go-github event types whose payloads
// carry an action property.
type actionHolder interface {
	GetAction() string
}

// installationHolder is implemented by the go-github event types whose
// payloads identify an App installation.
type installationHolder interface {
	GetInstallation() *github.Installation
}

// Service is an interface for components that can handle webhooks (events)
// from GitHub. Implementations of this interface are transport-agnostic.
type Service interface {
	// Handle handles a GitHub webhook (event).
	Handle(
		ctx context.Context,
		eventType string,
		deliveryID string,
		payload []byte,
	) error
}

type service struct {
	router *Router
}

// NewService returns an implementation of the Service interface that
// dispatches events to handlers registered with the provided Router.
func NewService(router *Router) Service {
	return &service{
		router: router,
	}
}

func (s *service) Handle(
	ctx context.Context,
	eventType string,
	deliveryID string,
	payload []byte,
) error {
	// Deliveries of event types with no registered handlers are acknowledged
	// and otherwise ignored. Checking BEFORE parsing also covers event types
	// newer than the client library, which it would fail to parse.
	if !s.router.KnowsEventType(eventType) {
		return nil
	}

	srcEvent, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return errors.Wrap(err, "error unmarshaling payload")
	}

	switch srcEvent.(type) {
	// GitHub sends a ping when a webhook is first configured. There is
	// nothing to do with it.
	case *github.PingEvent:
		return nil
	// Sent when someone revokes their authorization of the App. Nothing for
	// any handler to act on.
	case *github.GitHubAppAuthorizationEvent:
		return nil
	}

	event := Event{
		Type:       eventType,
		DeliveryID: deliveryID,
		Payload:    srcEvent,
	}
	if e, ok := srcEvent.(actionHolder); ok {
		event.Action = e.GetAction()
	}
	if e, ok := srcEvent.(installationHolder); ok {
		event.InstallationID = e.GetInstallation().GetID()
	}

	handler := s.router.Route(event.Type, event.Action)
	if handler == nil {
		// Unrecognized events are deliberately a no-op rather than an error
		return nil
	}
	return handler(ctx, event)
}
