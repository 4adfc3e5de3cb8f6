package webhooks

import "context"

// Handler is a function that handles a webhook (event) that has already been
// verified, parsed, and matched by event type and action. A handler that
// posts replies is responsible for declining to act on events generated by
// the gateway's own bot account, lest the gateway end up in conversation with
// itself.
type Handler func(ctx context.Context, event Event) error

// Router maps (event type, action) pairs to registered Handlers. All
// registrations occur at startup, before the router sees its first event, so
// lookups require no synchronization.
type Router struct {
	handlersByEventType map[string]map[string]Handler
}

// NewRouter returns a Router with no registrations.
func NewRouter() *Router {
	return &Router{
		handlersByEventType: map[string]map[string]Handler{},
	}
}

// Register registers a Handler for the given event type and action. An empty
// action registers the Handler as a fallback for all actions of the given
// event type. Registering a second Handler for the same event type and action
// replaces the first.
func (r *Router) Register(eventType string, action string, handler Handler) {
	handlersByAction, ok := r.handlersByEventType[eventType]
	if !ok {
		handlersByAction = map[string]Handler{}
		r.handlersByEventType[eventType] = handlersByAction
	}
	handlersByAction[action] = handler
}

// KnowsEventType returns true if at least one Handler is registered for the
// given event type.
func (r *Router) KnowsEventType(eventType string) bool {
	_, ok := r.handlersByEventType[eventType]
	return ok
}

// Route returns the Handler registered for the given event type and action,
// preferring an exact action match over an any-action fallback. It returns
// nil if no Handler matches. A nil result is not an error condition-- GitHub
// sends many event types a given App has no interest in.
func (r *Router) Route(eventType string, action string) Handler {
	handlersByAction, ok := r.handlersByEventType[eventType]
	if !ok {
		return nil
	}
	if handler, ok := handlersByAction[action]; ok {
		return handler
	}
	return handlersByAction[""]
}
