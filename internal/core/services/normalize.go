package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Normalizer converts plugin output into canonical records and decides
// insert-vs-skip against the record store. It is the single consistency
// boundary preventing duplicate growth across overlapping re-imports.
type Normalizer struct {
	store driven.RecordStore
}

// NewNormalizer creates a normalizer over the given record store.
func NewNormalizer(store driven.RecordStore) *Normalizer {
	return &Normalizer{store: store}
}

// Apply normalises one raw item and persists it unless its dedup key is
// already stored. Returns true when a new record was inserted, false when
// the item was skipped as a duplicate.
//
// A malformed item yields a domain.ErrValidation-wrapped error; the caller
// skips the item and continues. A store failure other than ErrDuplicate
// yields a domain.ErrPersistence-wrapped error, aborting the plugin's run.
func (n *Normalizer) Apply(ctx context.Context, pluginName string, raw domain.RawItem, now time.Time) (bool, error) {
	rec, err := n.normalize(pluginName, raw, now)
	if err != nil {
		return false, err
	}

	err = n.store.Insert(ctx, rec)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrDuplicate):
		return false, nil
	default:
		return false, fmt.Errorf("%w: insert %s/%s: %w", domain.ErrPersistence, pluginName, rec.SourceID, err)
	}
}

// normalize maps a raw item into the canonical record shape.
func (n *Normalizer) normalize(pluginName string, raw domain.RawItem, now time.Time) (*domain.Record, error) {
	sourceID := strings.TrimSpace(raw.SourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: item from %s has empty source_id", domain.ErrValidation, pluginName)
	}
	if raw.Title == "" && raw.Content == "" {
		return nil, fmt.Errorf("%w: item %s/%s has no title or content", domain.ErrValidation, pluginName, sourceID)
	}

	itemType := raw.ItemType
	if itemType == "" {
		itemType = "unknown"
	}

	ts := raw.SourceTimestamp
	if ts.IsZero() {
		ts = now
	}

	return &domain.Record{
		SourcePlugin:    pluginName,
		SourceID:        sourceID,
		ItemType:        itemType,
		Title:           raw.Title,
		Content:         raw.Content,
		Metadata:        raw.Metadata,
		SourceTimestamp: ts,
		ImportedAt:      now,
	}, nil
}
