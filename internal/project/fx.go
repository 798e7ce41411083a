package project

import (
	"github.com/stockroomhq/stockroom/internal/project/repository"
	"github.com/stockroomhq/stockroom/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
