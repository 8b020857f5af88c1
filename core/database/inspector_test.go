package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE proxy_host (id INTEGER PRIMARY KEY, domain_names TEXT, forward_host TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "proxy_host")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["domain_names"])
	assert.Equal(t, "text", colMap["forward_host"])

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE proxy_host (id INTEGER PRIMARY KEY, Forward_Host TEXT)").Error)

	missing, err := MissingColumns(db, "proxy_host", []string{"id", "forward_host", "forward_port"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"forward_port"}, missing)

	missing, err = MissingColumns(db, "absent", []string{"id"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}
