package item

import (
	"github.com/stockroomhq/stockroom/internal/item/repository"
	"github.com/stockroomhq/stockroom/internal/item/service"
	"go.uber.org/fx"
)

var Module = fx.Module("item.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
