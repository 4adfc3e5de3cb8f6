package github

// App encapsulates the details of the GitHub App on whose behalf this gateway
// acts.
type App struct {
	// AppID specifies the ID of the GitHub App.
	AppID int64
	// SharedSecret is the secret mutually agreed upon by this gateway and the
	// GitHub App. This secret is used to validate the authenticity and
	// integrity of payloads received by this gateway.
	SharedSecret string
	// APIKey is the PEM-encoded private API key for the GitHub App.
	APIKey []byte
	// BotLogin is the login of the App's bot account (e.g. "my-app[bot]").
	// Handlers use this to recognize, and decline to respond to, events
	// generated by the gateway's own comments.
	BotLogin string
}
