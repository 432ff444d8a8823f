package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
)

// ProgressFunc is called after each section summary with the number of
// finished sections and the total. Calls are serialized.
type ProgressFunc func(done, total int)

// Summarizer reduces a transcript of any length to one summary.
type Summarizer interface {
	// Summarize returns the final summary for text.
	Summarize(ctx context.Context, text, language string, p provider.Provider, progress ProgressFunc) (string, error)
	// Prepare runs every provider call except the last and returns the
	// request for the final pass, so the caller can stream it.
	Prepare(ctx context.Context, text, language string, p provider.Provider, progress ProgressFunc) (provider.Request, error)
}
