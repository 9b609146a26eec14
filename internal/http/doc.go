// Package http provides the HTTP client used for Deezer API requests,
// preview downloads and cover art.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Client-side rate limiting (golang.org/x/time/rate)
//   - Retries with exponential backoff on 429, 5xx and transport errors
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{RequestsPerSecond: 5, Burst: 10})
//
//	// Fetch JSON
//	body, err := client.Get(ctx, "https://api.deezer.com/artist/27")
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, previewURL, "/tmp/preview.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// Responses other than 200 OK are returned as *StatusError; only 429 and
// 5xx are retried.
package http
