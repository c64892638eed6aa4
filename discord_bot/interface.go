package discord_bot

import "context"

type Bot interface {
	// Start blocks until ctx is cancelled, then closes the session.
	Start(ctx context.Context)
}
