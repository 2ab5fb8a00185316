package dataset

import (
	"errors"
	"fmt"
)

// ErrMalformedPage is the cause of a FetchError when a submissions response
// has no websites list.
var ErrMalformedPage = errors.New("response has no websites list")

// FetchError is a network or parse failure for one page or the image mapping.
type FetchError struct {
	Resource string
	Page     int // 0 for the image mapping
	Err      error
}

func (e *FetchError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("failed to fetch %s page %d: %v", e.Resource, e.Page, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AggregationError reports a failed all-pages join. Err is the failure of
// the lowest-numbered page that failed.
type AggregationError struct {
	Page   int
	Failed int
	Pages  int
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed: %d of %d pages failed, first at page %d: %v", e.Failed, e.Pages, e.Page, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// newAggregationError builds the error from per-page results indexed by
// page-1. It returns nil when no page failed.
func newAggregationError(errs []error) error {
	var agg *AggregationError
	for i, err := range errs {
		if err == nil {
			continue
		}
		if agg == nil {
			agg = &AggregationError{Page: i + 1, Pages: len(errs), Err: err}
		}
		agg.Failed++
	}
	if agg == nil {
		return nil
	}
	return agg
}

// CacheWriteError is a failed best-effort cache write. It is logged and
// never returned to callers.
type CacheWriteError struct {
	Key string
	Err error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("unable to save %s to cache: %v", e.Key, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }
