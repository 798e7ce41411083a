package migration

import (
	categorydomain "github.com/stockroomhq/stockroom/internal/category/domain"
	historydomain "github.com/stockroomhq/stockroom/internal/history/domain"
	itemdomain "github.com/stockroomhq/stockroom/internal/item/domain"
	projectdomain "github.com/stockroomhq/stockroom/internal/project/domain"
	userdomain "github.com/stockroomhq/stockroom/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date at startup.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running schema migration")
	return db.AutoMigrate(
		&itemdomain.Item{},
		&itemdomain.ItemProject{},
		&historydomain.Ledger{},
		&projectdomain.Project{},
		&categorydomain.Category{},
		&userdomain.User{},
	)
}

var Module = fx.Module("migration",
	fx.Invoke(Migrate),
)
