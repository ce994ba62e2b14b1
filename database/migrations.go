package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-site-backend/models"
)

// Migrate brings the schema up to date. Every migration is idempotent.
func Migrate(db *gorm.DB) error {
	if err := setupJoinTables(db); err != nil {
		return err
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202401010001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(models.All()...)
			},
			Rollback: func(tx *gorm.DB) error {
				all := models.All()
				for i := len(all) - 1; i >= 0; i-- {
					if err := tx.Migrator().DropTable(all[i]); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			// A partial unique index makes a second owner row impossible.
			ID: "202401010002_single_owner",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_single_owner ON users (is_owner) WHERE is_owner").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_users_single_owner").Error
			},
		},
	})
	return m.Migrate()
}

// setupJoinTables binds the project/tag many2many relation to models.ProjectTag.
func setupJoinTables(db *gorm.DB) error {
	return db.SetupJoinTable(&models.Project{}, "Tags", &models.ProjectTag{})
}
