package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/pkg/storage"
)

// SnapshotKey returns the blob key for a snapshot under prefix. Zero
// padding keeps lexical and version order aligned.
func SnapshotKey(prefix string, s learning.Snapshot) string {
	return fmt.Sprintf("%sw%06d-t%06d.json", prefix, s.Weights.Version(), s.Thresholds.Version())
}

type archive struct {
	classifications.Store
	blobs  storage.System
	prefix string
	logger *slog.Logger
}

// NewArchive wraps inner so that every saved configuration is also
// uploaded to blobs as JSON. When inner has no configuration, LoadConfig
// falls back to the newest archived snapshot.
func NewArchive(
	inner classifications.Store,
	blobs storage.System,
	prefix string,
	logger *slog.Logger,
) classifications.Store {
	return &archive{
		Store:  inner,
		blobs:  blobs,
		prefix: prefix,
		logger: logger.With("system", "archive"),
	}
}

func (a *archive) SaveConfig(ctx context.Context, s learning.Snapshot) error {
	innerErr := a.Store.SaveConfig(ctx, s)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Join(innerErr, fmt.Errorf("encode snapshot: %w", err))
	}

	key := SnapshotKey(a.prefix, s)
	if err := a.blobs.Put(ctx, key, data, "application/json"); err != nil {
		return errors.Join(innerErr, fmt.Errorf("archive snapshot %s: %w", key, err))
	}

	a.logger.Debug("snapshot archived", "key", key)
	return innerErr
}

func (a *archive) LoadConfig(ctx context.Context) (learning.Snapshot, error) {
	snap, err := a.Store.LoadConfig(ctx)
	if !errors.Is(err, classifications.ErrNoConfig) {
		return snap, err
	}

	objects, err := a.blobs.List(ctx, a.prefix)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return snap, classifications.ErrNoConfig
		}
		return snap, fmt.Errorf("list snapshots: %w", err)
	}

	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		if strings.HasSuffix(o.Key, ".json") {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) == 0 {
		return snap, classifications.ErrNoConfig
	}
	slices.Sort(keys)

	latest := keys[len(keys)-1]
	data, err := a.blobs.Get(ctx, latest)
	if err != nil {
		return snap, fmt.Errorf("read snapshot %s: %w", latest, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", latest, err)
	}

	a.logger.Info("config loaded from archive", "key", latest)
	return snap, nil
}
