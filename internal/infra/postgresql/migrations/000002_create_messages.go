package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/messagegate/smsgate/internal/repository"
	"gorm.io/gorm"
)

func createMessagesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_messages",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.MessageModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_outbound_messages_status ON outbound_messages (delivery_status, id)`,
				`CREATE INDEX IF NOT EXISTS idx_outbound_messages_tenant ON outbound_messages (tenant_id, id)`,
				`CREATE INDEX IF NOT EXISTS idx_outbound_messages_external_id ON outbound_messages (external_id) WHERE external_id IS NOT NULL`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.MessageModel{})
		},
	}
}
