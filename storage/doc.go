// Package storage is where rendered transcripts are written.
//
// Backends register a factory and are selected by Config.Provider:
//
//   - storage/local: files under a base directory (default "transcripts")
//
//	store, err := storage.New(storage.Config{BasePath: "transcripts"}, log)
//	err = store.Upload(ctx, "meeting_20260101_120000.txt", strings.NewReader(text))
package storage
