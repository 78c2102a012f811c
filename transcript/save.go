package transcript

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/storage"
)

// TimestampLayout is the time format used in transcript file names.
const TimestampLayout = "20060102_150405"

// UniqueFilename returns "<stem>_<YYYYmmdd_HHMMSS>.txt" for audioPath.
func UniqueFilename(audioPath string, now time.Time) string {
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_" + now.Format(TimestampLayout) + ".txt"
}

// maxNameAttempts bounds the "_2", "_3", ... suffixes tried by Save.
const maxNameAttempts = 100

// Save writes text to store under name and returns where it was written.
// An existing transcript is never replaced: "_2", "_3", ... is inserted
// before the extension until a free name is found. Backends rooted on disk
// report the file path, others their URL.
func Save(ctx context.Context, store storage.Storage, text, name string) (string, error) {
	if store == nil {
		return "", errors.MissingField("storage")
	}
	name, err := freeName(ctx, store, name)
	if err != nil {
		return "", err
	}
	if err := store.Upload(ctx, name, strings.NewReader(text)); err != nil {
		return "", err
	}
	if rooted, ok := store.(interface{ BasePath() string }); ok {
		return filepath.Join(rooted.BasePath(), filepath.FromSlash(path.Clean("/" + name))), nil
	}
	return store.URL(ctx, name)
}

func freeName(ctx context.Context, store storage.Storage, name string) (string, error) {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 2; i <= maxNameAttempts; i++ {
		taken, err := store.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	return "", errors.Internal(fmt.Errorf("no free transcript name for %s", name))
}
