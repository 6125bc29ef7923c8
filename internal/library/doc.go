// Package library maintains the in-memory view of the user's video
// collection: the uploaded and processed lists, the processing job attached
// to each video, and the mutations that keep both lists consistent with the
// backend.
package library
