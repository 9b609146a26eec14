// Package preview plays the short MP3 samples the catalog offers for
// tracks.
//
// Samples are downloaded once into a temporary directory, decoded with
// beep and played through the system speaker. Only one preview plays at a
// time; each Start returns a new Handle and invalidates the previous one.
package preview
