// Package download dispatches single tracks to an external download
// engine and post-processes the result.
//
// # Dispatcher
//
// For each track the Dispatcher:
//
//  1. Checks whether the track is already on disk (StatusAlreadyExists)
//  2. Runs the Engine once per quality tier, highest first, until an
//     audio file appears in the destination directory
//  3. Rewrites ID3 tags and embeds resized cover art (MP3 only)
//
// Album playlists can be written afterwards from the files the
// Dispatcher recorded.
//
// # Basic Usage
//
//	engine := download.NewDeemixEngine(settings.DeemixPath, settings.ARL, logger)
//	dispatcher := download.NewDispatcher(settings, engine, httpClient, logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	status, err := dispatcher.Download(ctx, track, settings.Output, settings.Qualities())
//	if errors.Is(err, download.ErrDispatchFailure) {
//	    // every quality failed
//	}
//
// # Engines
//
// DeemixEngine runs the deemix CLI (deemix -b <bitrate> -p <dir> <link>).
// Tests substitute their own Engine.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package download
