package favicon

import (
	"context"
	"strings"
	"sync"
)

// Result holds the outcome for a single URL.
type Result struct {
	URL  string
	Icon Icon
	// Error is the readable reason a fallback was used.
	Error string
}

// ProgressFunc is called after each URL is resolved.
// completed is the number of URLs done so far, total is the total count.
type ProgressFunc func(completed, total int)

// Prefetch resolves urls concurrently, warming both cache layers. Results
// keep the order of urls. Cancelling ctx stops handing out work.
func (r *Resolver) Prefetch(ctx context.Context, urls []string, concurrency int, onProgress ProgressFunc) []Result {
	if len(urls) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(urls))
	jobs := make(chan int)
	var wg sync.WaitGroup

	// Progress tracking
	var progressMu sync.Mutex
	completed := 0

	// Start workers
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				icon, err := r.Resolve(ctx, urls[idx])
				results[idx] = Result{URL: urls[idx], Icon: icon}
				if err != nil {
					results[idx].Error = normalizeError(err.Error())
				}

				if onProgress != nil {
					progressMu.Lock()
					completed++
					onProgress(completed, len(urls))
					progressMu.Unlock()
				}
			}
		}()
	}

	// Send jobs
send:
	for i := range urls {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)

	wg.Wait()
	return results
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "not an image"):
		return "Not an image"
	default:
		return errStr
	}
}
