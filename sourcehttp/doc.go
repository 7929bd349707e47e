// Package sourcehttp loads configuration documents over HTTP(S).
//
// The format follows the extension of the URL path, a fragment names the
// charset. Requests go through a retrying client guarded by one circuit
// breaker per host, so a flapping endpoint degrades to empty sources instead
// of stalling every load.
//
// Example:
//
//	agg := tether.NewAggregator().
//	    WithLoader(sourcehttp.New(sourcehttp.Options{Retries: 3})).
//	    WithUncachedSource("https://config.example.com/app.yaml")
package sourcehttp
