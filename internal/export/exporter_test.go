package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
	"github.com/dmitrijs2005/huddlekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items   map[huddle.Category][]huddle.TrackedItem
	history map[huddle.Category][]huddle.TrackedItem
	addErr  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		items:   map[huddle.Category][]huddle.TrackedItem{},
		history: map[huddle.Category][]huddle.TrackedItem{},
	}
}

func (f *fakeSource) ExportItems(c huddle.Category) ([]huddle.TrackedItem, error) {
	return f.items[c], nil
}

func (f *fakeSource) AddToTrackerHistory(_ context.Context, c huddle.Category, items []huddle.TrackedItem) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	seen := map[string]bool{}
	for _, r := range f.history[c] {
		seen[r.ID] = true
	}
	for _, it := range items {
		if !seen[it.ID] {
			seen[it.ID] = true
			f.history[c] = append(f.history[c], it)
		}
	}
	return len(f.history[c]), nil
}

func (f *fakeSource) TrackerHistory(_ context.Context, c huddle.Category) ([]huddle.TrackedItem, error) {
	return f.history[c], nil
}

type fakeUploader struct {
	names []string
	body  []byte
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, name string, body []byte) error {
	u.names = append(u.names, name)
	u.body = body
	return u.err
}

func todo(id, task string, ts time.Time) huddle.TrackedItem {
	return huddle.TrackedItem{ID: id, Cells: []string{"2026-03-14", task, ts.Format(time.Kitchen)}, Timestamp: ts}
}

func TestExportSection_WritesWholeLedger(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "exports")
	src := newFakeSource()
	up := &fakeUploader{}
	e := New(src, dir, up, logging.Nop())

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	res, err := e.ExportSection(ctx, huddle.Todo24, []huddle.TrackedItem{todo("1", "call insurer", t0)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewCount)
	assert.Equal(t, 1, res.TotalCount)
	assert.True(t, res.Uploaded)

	res, err = e.ExportSection(ctx, huddle.Todo24, []huddle.TrackedItem{
		todo("1", "call insurer", t0),
		todo("2", "print statements", t0.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewCount)
	assert.Equal(t, 2, res.TotalCount, "ledger dedups by id")
	assert.Equal(t, filepath.Join(dir, "24_Hour_ToDo.csv"), res.Path)

	b, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimPrefix(string(b), string(utf8BOM)), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Task,Timestamp", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2026-03-14,print statements,"), "newest first")
	assert.True(t, strings.HasPrefix(lines[2], "2026-03-14,call insurer,"))
	assert.Equal(t, "", lines[3])

	assert.Equal(t, []string{"24_Hour_ToDo.csv", "24_Hour_ToDo.csv"}, up.names)
	assert.Equal(t, b, up.body)
}

func TestExportSection_Empty(t *testing.T) {
	e := New(newFakeSource(), t.TempDir(), nil, logging.Nop())
	_, err := e.ExportSection(context.Background(), huddle.NoAppt, nil)
	require.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportSection_UploadFailureKeepsLocalFile(t *testing.T) {
	boom := errors.New("boom")
	e := New(newFakeSource(), t.TempDir(), &fakeUploader{err: boom}, logging.Nop())

	res, err := e.ExportSection(context.Background(), huddle.Todo24, []huddle.TrackedItem{todo("1", "x", time.Now())})
	require.NoError(t, err)
	assert.False(t, res.Uploaded)
	assert.ErrorIs(t, res.UploadErr, boom)
	assert.FileExists(t, res.Path)
}

func TestExportSection_HistoryError(t *testing.T) {
	src := newFakeSource()
	src.addErr = errors.New("locked")
	e := New(src, t.TempDir(), nil, logging.Nop())

	_, err := e.ExportSection(context.Background(), huddle.Todo24, []huddle.TrackedItem{todo("1", "x", time.Now())})
	require.Error(t, err)
}

func TestExportAll_SkipsEmptyCategories(t *testing.T) {
	src := newFakeSource()
	now := time.Now()
	src.items[huddle.Todo24] = []huddle.TrackedItem{todo("1", "x", now)}
	src.items[huddle.PmtIssues] = []huddle.TrackedItem{{ID: "p", Cells: []string{"2026-03-14", "John Smith", "PMT Issue", "", ""}, Timestamp: now}}

	dir := t.TempDir()
	e := New(src, dir, nil, logging.Nop())
	results, err := e.ExportAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, huddle.PmtIssues, results[0].Category)
	assert.Equal(t, huddle.Todo24, results[1].Category)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSync(t *testing.T) {
	src := newFakeSource()
	src.items[huddle.Todo24] = []huddle.TrackedItem{todo("1", "x", time.Now())}

	res, err := New(src, t.TempDir(), nil, logging.Nop()).Sync(context.Background(), huddle.Todo24)
	require.NoError(t, err)
	assert.Nil(t, res, "no uploader, no sync")

	up := &fakeUploader{}
	e := New(src, t.TempDir(), up, logging.Nop())
	res, err = e.Sync(context.Background(), huddle.NoAppt)
	require.NoError(t, err)
	assert.Nil(t, res, "nothing to sync")

	res, err = e.Sync(context.Background(), huddle.Todo24)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Uploaded)
	assert.True(t, e.HasUploader())
}
