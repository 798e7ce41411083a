package user

import (
	"github.com/stockroomhq/stockroom/internal/user/repository"
	"github.com/stockroomhq/stockroom/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
