package notifier

import (
	"context"

	"github.com/stockroomhq/stockroom/internal/config"
	"github.com/stockroomhq/stockroom/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config, provider email.Provider, log *zap.Logger) *MailQueue {
	return NewMailQueue(cfg.Mail, provider, log)
}

func asQueue(q *MailQueue) Queue {
	return q
}

func registerHooks(lc fx.Lifecycle, q *MailQueue) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			q.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return q.Stop(ctx)
		},
	})
}

var Module = fx.Module("notifier",
	fx.Provide(provide),
	fx.Provide(asQueue),
	fx.Invoke(registerHooks),
)
