package category

import (
	"github.com/stockroomhq/stockroom/internal/category/repository"
	"github.com/stockroomhq/stockroom/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
