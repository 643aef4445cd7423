// Package httputil fetches input documents over HTTP.
//
// # Overview
//
//   - [Fetcher]: downloads a JSON or YAML document with retry and an
//     optional [cache.Cache] in front
//   - [Retry]: automatic retry with exponential backoff
//
// The CLI accepts a URL wherever it accepts an input file:
//
//	jsonflow build https://example.com/data.json
//
// # Retry
//
// [Retry] only repeats errors wrapped in [RetryableError]. Fetch marks
// network errors and 5xx or 429 responses as retryable;
// any other non-200 status fails immediately.
//
// [cache.Cache]: github.com/matzehuels/jsonflow/pkg/cache.Cache
package httputil
