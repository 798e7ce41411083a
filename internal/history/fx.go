package history

import (
	"github.com/stockroomhq/stockroom/internal/history/repository"
	"github.com/stockroomhq/stockroom/internal/history/service"
	"go.uber.org/fx"
)

var Module = fx.Module("history.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
