package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunAutoMigratesSQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Run(conn, db.TypeSQLite))
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: conn}
		require.NoError(t, stmt.Parse(model))
		assert.True(t, conn.Migrator().HasTable(model), stmt.Schema.Table)
	}

	// Running again is a no-op.
	require.NoError(t, Run(conn, db.TypeSQLite))
}

func TestRunRequiresConnection(t *testing.T) {
	assert.Error(t, Run(nil, db.TypeSQLite))
	assert.Error(t, RunMigrations(nil))
}

func TestEmbeddedMigrationsCoverEveryTable(t *testing.T) {
	up, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.up.sql")
	require.NoError(t, err)
	down, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.down.sql")
	require.NoError(t, err)

	conn, err := db.NewTest()
	require.NoError(t, err)
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: conn}
		require.NoError(t, stmt.Parse(model))
		table := stmt.Schema.Table
		assert.True(t, strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
		assert.True(t, strings.Contains(string(down), "DROP TABLE IF EXISTS "+table+";"), table)
	}
}
