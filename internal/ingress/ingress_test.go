package ingress

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LeonAdeoye/notional-limit-service/internal/processor"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

type fakeSubmitter struct {
	submitted []*models.Order
	errs      []error
}

func (f *fakeSubmitter) Submit(order *models.Order) error {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.submitted = append(f.submitted, order)
	return nil
}

func newTestIngress(t *testing.T, submitter Submitter) (*Ingress, string) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()
	return NewIngress(NewValidator(logger), NewJournal(dir, logger), submitter, logger), dir
}

func journalFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "invalid_messages_*.json"))
	require.NoError(t, err)
	return matches
}

func TestHandleMessageSubmitsValidOrder(t *testing.T) {
	submitter := &fakeSubmitter{}
	ing, dir := newTestIngress(t, submitter)

	err := ing.HandleMessage(context.Background(), nil, []byte(validPayload()))
	require.NoError(t, err)
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, "0700.HK", submitter.submitted[0].Symbol)
	assert.Empty(t, journalFiles(t, dir))
}

func TestHandleMessageJournalsInvalidOrder(t *testing.T) {
	submitter := &fakeSubmitter{}
	ing, dir := newTestIngress(t, submitter)

	err := ing.HandleMessage(context.Background(), nil, []byte(`{"quantity": -5}`))
	require.NoError(t, err, "invalid messages are journaled and acknowledged")
	assert.Empty(t, submitter.submitted)

	files := journalFiles(t, dir)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]),
		fmt.Sprintf("invalid_messages_%s", time.Now().Format("20060102")))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var entry JournalEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Contains(t, entry.Reason, "quantity must be positive")
	assert.Equal(t, `{"quantity": -5}`, entry.Message)
}

func TestHandleMessageRetriesOnQueueFull(t *testing.T) {
	submitter := &fakeSubmitter{errs: []error{processor.ErrQueueFull, processor.ErrQueueFull}}
	ing, _ := newTestIngress(t, submitter)

	err := ing.HandleMessage(context.Background(), nil, []byte(validPayload()))
	require.NoError(t, err)
	assert.Len(t, submitter.submitted, 1, "order must be submitted after the queue drains")
}

func TestHandleMessageStopsOnShutdown(t *testing.T) {
	submitter := &fakeSubmitter{errs: []error{processor.ErrShutdown}}
	ing, _ := newTestIngress(t, submitter)

	err := ing.HandleMessage(context.Background(), nil, []byte(validPayload()))
	assert.ErrorIs(t, err, processor.ErrShutdown)
	assert.Empty(t, submitter.submitted)
}

func TestHandleMessageStopsOnCancelledContext(t *testing.T) {
	submitter := &fakeSubmitter{errs: []error{processor.ErrQueueFull, processor.ErrQueueFull, processor.ErrQueueFull}}
	ing, _ := newTestIngress(t, submitter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ing.HandleMessage(ctx, nil, []byte(validPayload()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJournalAppendsEntries(t *testing.T) {
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()
	journal := NewJournal(dir, logger)

	journal.Record([]byte("first"), "bad side")
	journal.Record([]byte("second"), "bad price")

	files := journalFiles(t, dir)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}
