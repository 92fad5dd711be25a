package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/flexattrs/pkg/db"
	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
)

func TestRun(t *testing.T) {
	database, err := db.Connect(db.Config{URL: "sqlite:" + filepath.Join(t.TempDir(), "demo.db")})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	var out bytes.Buffer
	require.NoError(t, run(&out, database, flex.NewRegistry()))

	assert.Equal(t, "Paris has_brie_and_cheese = true\n"+
		"after replacing: 1 attribute(s)\n"+
		"  is_smug = false\n"+
		"after purge: 0 attribute(s)\n", out.String())
}
