package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/migrations/postgres"
)

func TestMigrator_ParseEmbedded(t *testing.T) {
	migs, err := NewMigrator(postgres.FS, postgres.Dir).Parse()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	require.Equal(t, 1, migs[0].Version)
	require.Equal(t, "init", migs[0].Name)
	require.Contains(t, migs[0].SQL, "refresh_token")
}

func TestMigrator_ParseOrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte("SELECT 2;")},
		"m/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"m/README.md":       {Data: []byte("ignored")},
	}
	migs, err := NewMigrator(fsys, "m").Parse()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	require.Equal(t, "first", migs[0].Name)
	require.Equal(t, "second", migs[1].Name)

	fsys["m/0002_dup.sql"] = &fstest.MapFile{Data: []byte("SELECT 3;")}
	_, err = NewMigrator(fsys, "m").Parse()
	require.Error(t, err)
}
