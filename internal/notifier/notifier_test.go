package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stockroomhq/stockroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeProvider struct {
	sent chan sentMail
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sent: make(chan sentMail, 16)}
}

func (p *fakeProvider) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	p.sent <- sentMail{to: to, subject: subject, body: htmlBody}
	return nil
}

func TestMailQueueSendsQueuedNotifications(t *testing.T) {
	provider := newFakeProvider()
	q := NewMailQueue(config.MailConfig{
		LowStockTo:   "stock@example.com",
		SendInterval: 0,
		QueueSize:    4,
	}, provider, zap.NewNop())

	q.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, q.Stop(ctx))
	}()

	q.EnqueueLowStock(LowStockItem{
		Name:            "M3 screw",
		InStock:         3,
		MeasurementUnit: "pcs",
		ShopLink:        "https://example.com/restock",
	})

	select {
	case mail := <-provider.sent:
		assert.Equal(t, []string{"stock@example.com"}, mail.to)
		assert.Equal(t, `Stock of "M3 screw" is running low`, mail.subject)
		assert.True(t, strings.Contains(mail.body, "3 pcs"))
		assert.True(t, strings.Contains(mail.body, "https://example.com/restock"))
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestMailQueueOmitsRestockLinkWhenNoShopLink(t *testing.T) {
	provider := newFakeProvider()
	q := NewMailQueue(config.MailConfig{
		LowStockTo: "stock@example.com",
		QueueSize:  4,
	}, provider, zap.NewNop())

	q.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, q.Stop(ctx))
	}()

	q.EnqueueLowStock(LowStockItem{Name: "wire", InStock: 1, MeasurementUnit: "m"})

	select {
	case mail := <-provider.sent:
		assert.False(t, strings.Contains(mail.body, "Restock"))
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestMailQueueEnqueueNeverBlocks(t *testing.T) {
	provider := newFakeProvider()
	// worker not started, capacity 1
	q := NewMailQueue(config.MailConfig{
		LowStockTo: "stock@example.com",
		QueueSize:  1,
	}, provider, zap.NewNop())

	done := make(chan struct{})
	go func() {
		q.EnqueueLowStock(LowStockItem{Name: "a"})
		q.EnqueueLowStock(LowStockItem{Name: "b"})
		q.EnqueueLowStock(LowStockItem{Name: "c"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}

func TestMailQueueSkipsSendWithoutRecipient(t *testing.T) {
	provider := newFakeProvider()
	q := NewMailQueue(config.MailConfig{QueueSize: 4}, provider, zap.NewNop())

	q.Start()
	q.EnqueueLowStock(LowStockItem{Name: "wire"})

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))

	assert.Empty(t, provider.sent)
}
