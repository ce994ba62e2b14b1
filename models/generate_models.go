package models

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Tooling modes, selected through environment variables at startup:

  GENERATE_MODELS=true         writes typed query helpers for every model to ./generated
  GENERATE_COLUMN_REPORT=true  prints the columns present in the database but unknown to the models

Both modes exit once finished and never serve traffic.
*/

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Project{},
		&ProjectTag{},
		&Comment{},
		&Like{},
		&Notification{},
	}
}

// GenerateModels writes gorm/gen query helpers for all models into outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(
		User{},
		Tag{},
		Project{},
		ProjectTag{},
		Comment{},
		Like{},
		Notification{},
	)
	g.Execute()

	log.Info().Str("outPath", outPath).Msg("query helper generation complete")
	return nil
}

// ColumnMismatch lists the database columns of one table that no model field maps to.
type ColumnMismatch struct {
	Table   string
	Columns []string
}

// ColumnMismatchReport compares every model with the live table it maps to.
func ColumnMismatchReport(db *gorm.DB) ([]ColumnMismatch, error) {
	var report []ColumnMismatch
	cache := &sync.Map{}

	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse model schema: %w", err)
		}

		if !db.Migrator().HasTable(s.Table) {
			log.Warn().Str("table", s.Table).Msg("table does not exist yet")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", s.Table, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		if missing := findColumnMismatches(dbColumns, s.DBNames); len(missing) > 0 {
			report = append(report, ColumnMismatch{Table: s.Table, Columns: missing})
		}
	}

	sort.Slice(report, func(i, j int) bool { return report[i].Table < report[j].Table })
	return report, nil
}

// LogColumnMismatchReport runs ColumnMismatchReport and writes the result to the log.
func LogColumnMismatchReport(db *gorm.DB) error {
	report, err := ColumnMismatchReport(db)
	if err != nil {
		return err
	}

	total := 0
	for _, m := range report {
		total += len(m.Columns)
		log.Warn().Str("table", m.Table).Strs("columns", m.Columns).Msg("columns not accounted for in model")
	}
	log.Info().Int("totalMismatches", total).Msg("column mismatch report complete")
	return nil
}

// findColumnMismatches returns the columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	known := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		known[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !known[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}
