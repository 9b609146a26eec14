// Package ioutils provides the file system and image helpers used by the
// download dispatcher.
//
// # Existing Files
//
// FindTrackFile locates a previously downloaded track by artist and title,
// independent of the naming scheme the engine used:
//
//	if path, ok := ioutils.FindTrackFile(dir, track.Artist, track.Title); ok {
//	    // skip download
//	}
//
// NewestAudioSince finds the file an engine run just produced.
//
// # Cover Art
//
//	svc := ioutils.NewImageService(90)
//	jpeg, err := svc.PrepareCover(ctx, pngData, 500)
package ioutils
