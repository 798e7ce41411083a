package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/internal/category"
	"github.com/stockroomhq/stockroom/internal/clock"
	"github.com/stockroomhq/stockroom/internal/config"
	"github.com/stockroomhq/stockroom/internal/history"
	"github.com/stockroomhq/stockroom/internal/item"
	"github.com/stockroomhq/stockroom/internal/logger"
	"github.com/stockroomhq/stockroom/internal/metrics"
	"github.com/stockroomhq/stockroom/internal/migration"
	"github.com/stockroomhq/stockroom/internal/notifier"
	"github.com/stockroomhq/stockroom/internal/project"
	"github.com/stockroomhq/stockroom/internal/providers/email"
	"github.com/stockroomhq/stockroom/internal/ratelimit"
	"github.com/stockroomhq/stockroom/internal/server"
	"github.com/stockroomhq/stockroom/internal/user"
	"github.com/stockroomhq/stockroom/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,

		email.Module,
		notifier.Module,
		ratelimit.Module,

		history.Module,
		item.Module,
		project.Module,
		category.Module,
		user.Module,

		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
