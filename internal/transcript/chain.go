package transcript

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

// NamedFetcher pairs a Fetcher with a name for logging.
type NamedFetcher struct {
	Name    string
	Fetcher Fetcher
}

type chain struct {
	fetchers []NamedFetcher
	logger   logger.Logger
}

// NewChain returns a Fetcher that tries each fetcher in order. Failures are
// reported as an *UnavailableError joining every cause.
func NewChain(log logger.Logger, fetchers ...NamedFetcher) Fetcher {
	return &chain{fetchers: fetchers, logger: log}
}

func (c *chain) Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error) {
	if len(c.fetchers) == 0 {
		return nil, &UnavailableError{VideoID: videoID, Err: errors.New("no transcript fetchers configured")}
	}

	var errs []error
	for _, nf := range c.fetchers {
		t, err := nf.Fetcher.Fetch(ctx, videoID, langs)
		if err == nil {
			return t, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn(ctx, "transcript: %s failed for %s: %v", nf.Name, videoID, err)
		errs = append(errs, fmt.Errorf("%s: %w", nf.Name, err))
	}
	return nil, &UnavailableError{VideoID: videoID, Err: errors.Join(errs...)}
}
