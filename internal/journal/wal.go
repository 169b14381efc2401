package journal

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	segmentThreshold = 1000
	maxSegments      = 100
	keyPrefix        = "correction_"
)

// WAL persists entries in a segmented write-ahead log on local disk.
type WAL struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// OpenWAL opens or creates the journal under dir.
func OpenWAL(dir string) (*WAL, error) {
	if dir == "" {
		return nil, errors.New("journal directory is required")
	}

	w, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "corrections_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init correction journal")
	}
	return &WAL{wal: w}, nil
}

// Append writes entry at the next index and returns that index.
func (j *WAL) Append(_ context.Context, entry Entry) (uint64, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return 0, errors.Wrap(err, "marshal journal entry")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	next := j.wal.CurrentIndex() + 1
	if err := j.wal.Write(next, keyPrefix+entry.CardFingerprint, payload); err != nil {
		return 0, errors.Wrap(err, "write journal entry")
	}
	return next, nil
}

// Since returns every entry written after index, oldest first.
func (j *WAL) Since(index uint64) ([]Indexed, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	current := j.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	out := make([]Indexed, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := j.wal.Get(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "read journal entry %d", idx)
		}
		// Missing indexes come back with an empty key.
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, errors.Wrapf(err, "decode journal entry %d", idx)
		}
		out = append(out, Indexed{Index: idx, Entry: entry})
	}
	return out, nil
}

// Close flushes and closes the underlying log.
func (j *WAL) Close() error {
	return j.wal.Close()
}
