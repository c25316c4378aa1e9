package migrations

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x Int64) ENGINE = MergeTree() ORDER BY x;

-- second
CREATE TABLE b (y String) ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(input)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x Int64) ENGINE = MergeTree() ORDER BY x", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String) ENGINE = MergeTree() ORDER BY y", stmts[1])
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'it''s fine';`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'a;b';`))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/risk")
	require.NoError(t, err)
	assert.Equal(t, "risk", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestLoad_EmbeddedMigrations(t *testing.T) {
	for _, dir := range []struct {
		fsys fs.FS
		name string
	}{
		{PostgresFS, "postgres"},
		{ClickhouseFS, "clickhouse"},
	} {
		files, err := load(dir.fsys, dir.name)
		require.NoError(t, err)
		require.NotEmpty(t, files, dir.name)
		assert.Equal(t, "001_invocations.sql", files[0].name)

		for _, f := range files {
			assert.NoError(t, validateNoSemicolonInStrings(f.sql), f.name)
			assert.NotEmpty(t, splitStatements(f.sql), f.name)
		}
	}
}

func TestLoad_OrdersAndSkipsEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.sql":  {Data: []byte("SELECT 2;")},
		"m/001_a.sql":  {Data: []byte("SELECT 1;")},
		"m/003_c.sql":  {Data: []byte("  \n")},
		"m/README.txt": {Data: []byte("not sql")},
	}

	files, err := load(fsys, "m")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "001_a.sql", files[0].name)
	assert.Equal(t, "002_b.sql", files[1].name)

	_, err = load(fsys, "missing")
	assert.Error(t, err)
}
