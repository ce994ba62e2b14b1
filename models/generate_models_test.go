package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches([]string{"id", "name", "legacy_slug"}, []string{"id", "name", "color"})
	require.Equal(t, []string{"legacy_slug"}, got)

	require.Empty(t, findColumnMismatches([]string{"id"}, []string{"id", "name"}))
}

func TestColumnMismatchReport(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:columns?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Tag{}))
	require.NoError(t, db.Exec("ALTER TABLE tags ADD COLUMN legacy_slug text").Error)

	report, err := ColumnMismatchReport(db)
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.Equal(t, "tags", report[0].Table)
	require.Equal(t, []string{"legacy_slug"}, report[0].Columns)
}
