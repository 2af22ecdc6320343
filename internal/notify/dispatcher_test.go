package notify_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/notify"
	id "matchport/pkg/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingTransport captures sends so tests can assert on what the worker
// delivered.
type recordingTransport struct {
	mu    sync.Mutex
	sends []string
	done  chan struct{}
}

func (r *recordingTransport) Send(_ context.Context, to, _, _ string, _ map[string]string) error {
	r.mu.Lock()
	r.sends = append(r.sends, to)
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return nil
}

func TestNotifyPersistsRow(t *testing.T) {
	ctx := context.Background()
	store := notify.NewInMemoryStore()
	d := notify.NewDispatcher(store, discard(), nil)

	recipient := id.NewAccountID()
	n, err := d.Notify(ctx, notify.Dispatch{
		RecipientID: recipient,
		Type:        notify.TypeClaimed,
		Title:       "Your request was claimed",
		Message:     "A donor stepped up.",
	})
	require.NoError(t, err)

	inbox, err := store.ListByRecipient(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, n.ID, inbox[0].ID)
	assert.Equal(t, notify.TypeClaimed, inbox[0].Type)
	assert.False(t, inbox[0].Read)
}

func TestWorkerDeliversQueuedEmail(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := notify.NewInMemoryStore()
	d := notify.NewDispatcher(store, discard(), nil)
	transport := &recordingTransport{done: make(chan struct{}, 1)}
	w := notify.NewWorker(d, transport, discard(), nil)

	go func() { _ = w.Run(ctx) }()

	_, err := d.Notify(ctx, notify.Dispatch{
		RecipientID:    id.NewAccountID(),
		RecipientEmail: "donor@example.org",
		Type:           notify.TypeFulfilled,
		Title:          "Request fulfilled",
		Message:        "Thank you!",
		TemplateID:     "request-fulfilled",
	})
	require.NoError(t, err)

	select {
	case <-transport.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never delivered the email")
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	assert.Equal(t, []string{"donor@example.org"}, transport.sends)
}

func TestNotifySkipsEmailWithoutTemplate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := notify.NewInMemoryStore()
	d := notify.NewDispatcher(store, discard(), nil)
	transport := &recordingTransport{done: make(chan struct{}, 1)}
	w := notify.NewWorker(d, transport, discard(), nil)
	go func() { _ = w.Run(ctx) }()

	// No template: in-app only.
	_, err := d.Notify(ctx, notify.Dispatch{
		RecipientID:    id.NewAccountID(),
		RecipientEmail: "donor@example.org",
		Type:           notify.TypeEdited,
		Title:          "Request updated",
		Message:        "Details changed.",
	})
	require.NoError(t, err)

	select {
	case <-transport.done:
		t.Fatal("no email should have been queued")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInboxService(t *testing.T) {
	ctx := context.Background()
	store := notify.NewInMemoryStore()
	d := notify.NewDispatcher(store, discard(), nil)
	svc := notify.NewService(store)

	recipient := id.NewAccountID()
	first, err := d.Notify(ctx, notify.Dispatch{
		RecipientID: recipient, Type: notify.TypeWelcome, Title: "Welcome", Message: "Hi",
	})
	require.NoError(t, err)
	_, err = d.Notify(ctx, notify.Dispatch{
		RecipientID: recipient, Type: notify.TypeClaimed, Title: "Claimed", Message: "News",
	})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, svc.MarkRead(ctx, recipient, first.ID))
	unread, err = svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, svc.MarkAllRead(ctx, recipient))
	unread, err = svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}
