package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/huddlekeeper/internal/filex"
	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
	"github.com/dmitrijs2005/huddlekeeper/internal/logging"
)

// Uploader pushes a finished export file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, name string, body []byte) error
}

// Source is the part of the huddle service an export reads from.
type Source interface {
	ExportItems(c huddle.Category) ([]huddle.TrackedItem, error)
	AddToTrackerHistory(ctx context.Context, c huddle.Category, items []huddle.TrackedItem) (int, error)
	TrackerHistory(ctx context.Context, c huddle.Category) ([]huddle.TrackedItem, error)
}

type Result struct {
	Category   huddle.Category
	NewCount   int
	TotalCount int
	Path       string
	Uploaded   bool
	// UploadErr is set when the local file was written but the upload
	// failed.
	UploadErr error
}

type Exporter struct {
	src      Source
	dir      string
	uploader Uploader
	log      logging.Logger
}

// New returns an exporter writing into dir. uploader may be nil.
func New(src Source, dir string, uploader Uploader, log logging.Logger) *Exporter {
	return &Exporter{
		src:      src,
		dir:      dir,
		uploader: uploader,
		log:      log.With("component", "export"),
	}
}

// HasUploader reports whether exports are also sent to the cloud drive.
func (e *Exporter) HasUploader() bool {
	return e.uploader != nil
}

// ExportSection records items in the ledger of c and rewrites the tracker
// file from the whole ledger. A failed upload does not fail the export; it
// is reported in Result.UploadErr.
func (e *Exporter) ExportSection(ctx context.Context, c huddle.Category, items []huddle.TrackedItem) (*Result, error) {
	if len(items) == 0 {
		return nil, ErrNothingToExport
	}

	total, err := e.src.AddToTrackerHistory(ctx, c, items)
	if err != nil {
		return nil, fmt.Errorf("update tracker history: %w", err)
	}

	all, err := e.src.TrackerHistory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("read tracker history: %w", err)
	}
	if len(all) == 0 {
		all = items
		total = len(items)
	}

	body, err := EncodeCSV(c, all)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c, err)
	}

	dir, err := filex.EnsureDir(e.dir)
	if err != nil {
		return nil, err
	}
	name := TrackerFile(c)
	path := filepath.Join(dir, name)
	if err := filex.WriteFileAtomic(path, body, 0o600); err != nil {
		return nil, err
	}

	res := &Result{
		Category:   c,
		NewCount:   len(items),
		TotalCount: total,
		Path:       path,
	}

	if e.uploader != nil {
		if err := e.uploader.Upload(ctx, name, body); err != nil {
			e.log.Error(ctx, "upload failed", "file", name, "error", err)
			res.UploadErr = err
		} else {
			res.Uploaded = true
		}
	}

	e.log.Info(ctx, "section exported", "category", string(c), "new", res.NewCount, "total", res.TotalCount, "uploaded", res.Uploaded)
	return res, nil
}

// Sync exports the current items of c, as done automatically when moving
// past a section. Without an uploader or items it does nothing and returns
// nil, nil.
func (e *Exporter) Sync(ctx context.Context, c huddle.Category) (*Result, error) {
	if e.uploader == nil {
		return nil, nil
	}
	items, err := e.src.ExportItems(c)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return e.ExportSection(ctx, c, items)
}

// ExportAll exports every category that currently has items. Categories
// without items are skipped.
func (e *Exporter) ExportAll(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, 0, len(huddle.Categories))
	for _, c := range huddle.Categories {
		items, err := e.src.ExportItems(c)
		if err != nil {
			return results, err
		}
		if len(items) == 0 {
			continue
		}
		res, err := e.ExportSection(ctx, c, items)
		if err != nil {
			return results, fmt.Errorf("export %s: %w", c, err)
		}
		results = append(results, res)
	}
	return results, nil
}
