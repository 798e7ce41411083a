package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/internal/config"
	"github.com/stockroomhq/stockroom/internal/providers/email"
	"go.uber.org/zap"
)

// LowStockItem carries the display fields a low-stock mail needs.
type LowStockItem struct {
	ID              snowflake.ID
	Name            string
	InStock         float64
	MeasurementUnit string
	ShopLink        string
}

// Queue accepts low-stock notifications without blocking the caller.
type Queue interface {
	EnqueueLowStock(item LowStockItem)
}

// MailQueue is the single consumer of outbound low-stock mail. One background
// worker drains a bounded channel with a fixed minimum spacing between sends,
// keeping the mail transport off the request and transaction path.
type MailQueue struct {
	ch       chan LowStockItem
	provider email.Provider
	log      *zap.Logger
	to       string
	spacing  time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewMailQueue(cfg config.MailConfig, provider email.Provider, log *zap.Logger) *MailQueue {
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	spacing := time.Duration(cfg.SendInterval) * time.Second
	if spacing < 0 {
		spacing = 0
	}
	return &MailQueue{
		ch:       make(chan LowStockItem, size),
		provider: provider,
		log:      log.Named("notifier"),
		to:       cfg.LowStockTo,
		spacing:  spacing,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// EnqueueLowStock never blocks; when the queue is full the notification is
// dropped with a log line.
func (q *MailQueue) EnqueueLowStock(item LowStockItem) {
	select {
	case q.ch <- item:
	default:
		q.log.Warn("low stock queue full, dropping notification",
			zap.String("item_id", item.ID.String()),
			zap.String("item_name", item.Name),
		)
	}
}

func (q *MailQueue) Start() {
	go q.run()
}

func (q *MailQueue) Stop(ctx context.Context) error {
	close(q.stop)
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MailQueue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.stop:
			return
		case item := <-q.ch:
			q.send(item)
			if q.spacing == 0 {
				continue
			}
			select {
			case <-q.stop:
				return
			case <-time.After(q.spacing):
			}
		}
	}
}

func (q *MailQueue) send(item LowStockItem) {
	if q.to == "" {
		q.log.Debug("no low stock recipient configured, skipping notification",
			zap.String("item_name", item.Name),
		)
		return
	}

	subject := fmt.Sprintf("Stock of %q is running low", item.Name)
	body := fmt.Sprintf("<p>%q only has %v %s left</p>", item.Name, item.InStock, item.MeasurementUnit)
	if item.ShopLink != "" {
		body += fmt.Sprintf(`<br /><a href=%s target="_blank" rel="noopener noreferrer">Restock</a>`, item.ShopLink)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := q.provider.Send(ctx, []string{q.to}, subject, body); err != nil {
		q.log.Error("failed to send low stock email",
			zap.String("item_name", item.Name),
			zap.Error(err),
		)
		return
	}
	q.log.Info("sent low stock email", zap.String("item_name", item.Name))
}
