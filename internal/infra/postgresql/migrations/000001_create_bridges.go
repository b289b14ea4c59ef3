package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/messagegate/smsgate/internal/repository"
	"gorm.io/gorm"
)

func createBridgesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_bridges",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.BridgeModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_sms_bridges_tenant ON sms_bridges (tenant_id)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.BridgeModel{})
		},
	}
}
