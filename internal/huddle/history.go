package huddle

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
)

func (s *service) loadHistory(ctx context.Context) (History, error) {
	h := History{}
	if _, err := s.load(ctx, common.KeyExportHistory, &h); err != nil {
		return nil, err
	}
	if h == nil {
		h = History{}
	}
	return h, nil
}

// TrackerHistory returns every row exported so far for c.
func (s *service) TrackerHistory(ctx context.Context, c Category) ([]TrackedItem, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	h, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	rows := slices.Clone(h[c])
	if rows == nil {
		rows = []TrackedItem{}
	}
	return rows, nil
}

// AddToTrackerHistory appends the items of c whose ids are not yet in the
// ledger and returns the resulting ledger size for c.
func (s *service) AddToTrackerHistory(ctx context.Context, c Category, items []TrackedItem) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	h, err := s.loadHistory(ctx)
	if err != nil {
		return 0, err
	}

	rows := h[c]
	seen := make(map[string]struct{}, len(rows)+len(items))
	for _, r := range rows {
		seen[r.ID] = struct{}{}
	}
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		rows = append(rows, it)
	}
	if rows == nil {
		rows = []TrackedItem{}
	}
	h[c] = rows

	if err := s.save(ctx, common.KeyExportHistory, h); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ClearTrackerHistory empties the ledger of c, or of every category when c
// is empty.
func (s *service) ClearTrackerHistory(ctx context.Context, c Category) error {
	if c != "" && !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	h, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}

	if c == "" {
		for _, cat := range Categories {
			h[cat] = []TrackedItem{}
		}
	} else {
		h[c] = []TrackedItem{}
	}

	return s.save(ctx, common.KeyExportHistory, h)
}
