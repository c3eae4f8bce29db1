package browser

import (
	"context"
	"time"
)

// Driver is the browser session the collector and classifier drive. It is
// single-owner: one navigation or script runs at a time.
type Driver interface {
	// Navigate loads url and returns once the document is ready.
	Navigate(ctx context.Context, url string) error

	// Evaluate runs script against the current page and decodes its final
	// JSON-compatible value into res. A nil res discards the value.
	Evaluate(ctx context.Context, script string, res any) error

	// ScrollToBottom scrolls the current page to its end to trigger lazy
	// loading.
	ScrollToBottom(ctx context.Context) error

	// Sleep blocks for d, returning early only when ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}
