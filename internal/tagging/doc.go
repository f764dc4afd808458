// Package tagging reads, merges and writes the metadata of local audio files.
//
// [Merge] is the pure policy deciding which discovered fields are written:
//
//	discovered field empty         no change
//	overwrite enabled              write when it differs from the local value
//	overwrite disabled             write only when the local value is empty
//
// Cover art is tracked as a presence flag; with overwrite enabled a discovered cover always
// replaces the embedded one.
//
// [ReadTags] and [WriteTags] dispatch on the file extension: MP3 files go through
// github.com/bogem/id3v2, FLAC files through the go-flac packages. Other extensions report
// [shared.ErrUnsupportedFormat].
package tagging
