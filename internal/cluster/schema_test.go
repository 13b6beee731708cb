package cluster

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFileCreateAppendReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.bob")

	sf, err := createSchemaFile(path)
	require.NoError(t, err)
	require.NoError(t, sf.AppendSDL(`create table t { id: u64 }`))
	require.NoError(t, sf.Close())

	reopened, contents, err := openSchemaFile(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "create table t { id: u64 }\n", contents)

	require.NoError(t, reopened.AppendSDL(`create table u { id: u64 }`))
}

func TestCreateSchemaFileRejectsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.bob")
	sf, err := createSchemaFile(path)
	require.NoError(t, err)
	defer sf.Close()

	_, err = createSchemaFile(path)
	assert.Error(t, err)
}
