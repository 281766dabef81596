// Package httputil provides HTTP plumbing shared by repository clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff. Only errors wrapped
// in [RetryableError] are retried; everything else returns immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Defaults: 3 attempts, 1 second initial delay, doubling.
//
// # Throttle
//
// [Throttle] spaces requests to a repository. A single instance is shared by
// every request of a crawl (directory listings, POM downloads, searches):
//
//	t := httputil.NewThrottle(httputil.DefaultInterval)
//	if err := t.Wait(ctx); err != nil {
//	    return err
//	}
package httputil
