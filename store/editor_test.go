package store

import (
	"context"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotelines/quote"
	"quotelines/testhelpers"
)

// liveEditor drives a quote.Editor backed by the PocketBase store on a
// running event loop.
type liveEditor struct {
	loop   *quote.EventLoop
	editor *quote.Editor
}

func startLiveEditor(t *testing.T, s *PocketBase, quoteID string) *liveEditor {
	t.Helper()
	loop := quote.NewEventLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	ed := quote.NewEditor(loop, s, s, quote.Options{QuoteID: quoteID})
	return &liveEditor{loop: loop, editor: ed}
}

func (l *liveEditor) do(t *testing.T, fn func(ed *quote.Editor)) {
	t.Helper()
	require.NoError(t, l.loop.Do(context.Background(), func() { fn(l.editor) }))
}

// await runs an asynchronous editor command and waits for its callback.
func (l *liveEditor) await(t *testing.T, start func(ed *quote.Editor, done func(error))) {
	t.Helper()
	result := make(chan error, 1)
	l.do(t, func(ed *quote.Editor) {
		start(ed, func(err error) { result <- err })
	})
	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("editor command never completed")
	}
}

func (l *liveEditor) load(t *testing.T) {
	t.Helper()
	l.await(t, func(ed *quote.Editor, done func(error)) { ed.Load(context.Background(), done) })
}

func (l *liveEditor) save(t *testing.T) {
	t.Helper()
	l.await(t, func(ed *quote.Editor, done func(error)) { ed.Save(context.Background(), done) })
}

func storedItems(t *testing.T, app core.App, quoteID string) []*core.Record {
	t.Helper()
	records, err := app.FindRecordsByFilter(
		"quote_line_items", "quote = {:quoteId}", "row_number", 0, 0,
		map[string]any{"quoteId": quoteID},
	)
	require.NoError(t, err)
	return records
}

func productNames(records []*core.Record) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.GetString("product_name"))
	}
	return names
}

func TestEditorSave_ReloadDiscardsPendingDeletes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "Lounge")
	testhelpers.CreateTestLineItem(t, app, q.Id, "1", 1, "Carpet", 210)
	testhelpers.CreateTestLineItem(t, app, q.Id, "2", 2, "Tiles", 105)

	ed := startLiveEditor(t, New(app, 0), q.Id)
	ed.load(t)
	ed.do(t, func(e *quote.Editor) {
		require.NoError(t, e.Select(1))
		require.NoError(t, e.Remove(1))
		assert.Len(t, e.PendingDeletes(), 1)
	})

	ed.load(t)
	ed.do(t, func(e *quote.Editor) {
		assert.Empty(t, e.PendingDeletes())
		assert.Len(t, e.Rows(), 2)
	})

	ed.save(t)
	ed.save(t)

	assert.Equal(t, []string{"Carpet", "Tiles"}, productNames(storedItems(t, app, q.Id)))
}

func TestEditorSave_AdoptsIDOfRecreatedRecord(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "Hall")
	testhelpers.CreateTestLineItem(t, app, q.Id, "1", 1, "Carpet", 210)
	gone := testhelpers.CreateTestLineItem(t, app, q.Id, "2", 2, "Tiles", 105)

	ed := startLiveEditor(t, New(app, 0), q.Id)
	ed.load(t)

	require.NoError(t, app.Delete(gone))
	ed.save(t)

	var reissued string
	ed.do(t, func(e *quote.Editor) { reissued = e.Rows()[1].ExternalID })
	assert.NotEqual(t, gone.Id, reissued)

	ed.save(t)
	stored := storedItems(t, app, q.Id)
	assert.Equal(t, []string{"Carpet", "Tiles"}, productNames(stored))
	assert.Equal(t, reissued, stored[1].Id)
}
