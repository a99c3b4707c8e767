package schema

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

func escape(query string) string {
	return regexp.QuoteMeta(query)
}

func mockDriver(t *testing.T, name string) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(name, db), mock
}

func TestInspector_Postgres(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	q := dialectQueries[dialect.Postgres]
	in, err := NewInspector(drv, "")
	require.NoError(t, err)
	ctx := context.Background()

	mock.ExpectQuery(escape(q.tables)).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "comment", "table_type"}).
			AddRow("user", "Application users", "BASE TABLE").
			AddRow("schema_migrations", "", "BASE TABLE").
			AddRow("active_user", "", "VIEW").
			AddRow("order", "", "BASE TABLE"))
	tables, err := in.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []load.Table{
		{Name: "active_user", Kind: load.KindView},
		{Name: "order", Kind: load.KindTable},
		{Name: "user", Comment: "Application users", Kind: load.KindTable},
	}, tables)

	mock.ExpectQuery(escape(q.columns)).
		WithArgs("public", "user").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "comment", "data_type", "udt_name", "max", "is_nullable"}).
			AddRow("name", "Display name", "character varying", "varchar", 100, "NO").
			AddRow("id", "", "bigint", "int8", 0, "NO").
			AddRow("email", "", "character varying", "varchar", 255, "YES"))
	columns, err := in.Columns(ctx, "user")
	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, "email", columns[0].Name)
	assert.True(t, columns[0].Nullable)
	assert.Equal(t, load.Column{Table: "user", Name: "name", Comment: "Display name", RawType: "varchar", NativeType: "character varying", MaxLength: 100}, columns[2])

	mock.ExpectQuery(escape(q.foreignKeys)).
		WithArgs("public", "user").
		WillReturnRows(sqlmock.NewRows([]string{"constraint", "table", "column", "ref_table", "ref_column", "update_rule", "delete_rule"}).
			AddRow("order_created_by_fkey", "order", "created_by", "user", "id", "NO ACTION", "CASCADE"))
	fks, err := in.ForeignKeys(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []load.ForeignKey{{
		Schema:          "public",
		Table:           "order",
		Column:          "created_by",
		RefTable:        "user",
		RefColumn:       "id",
		Constraint:      "order_created_by_fkey",
		RefTableComment: "Application users",
		OnUpdate:        "NO ACTION",
		OnDelete:        "CASCADE",
	}}, fks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_MySQLForeignKeysListTablesFirst(t *testing.T) {
	drv, mock := mockDriver(t, dialect.MySQL)
	q := dialectQueries[dialect.MySQL]
	in, err := NewInspector(drv, "app")
	require.NoError(t, err)

	mock.ExpectQuery(escape(q.tables)).
		WithArgs("app").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_comment", "table_type"}).
			AddRow("category", "Product categories", "BASE TABLE"))
	mock.ExpectQuery(escape(q.foreignKeys)).
		WithArgs("app", "category", "category").
		WillReturnRows(sqlmock.NewRows([]string{"constraint", "table", "column", "ref_table", "ref_column", "update_rule", "delete_rule"}).
			AddRow("category_parent_fk", "category", "parent_id", "category", "id", "RESTRICT", "SET NULL"))
	fks, err := in.ForeignKeys(context.Background(), "category")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.True(t, fks[0].SelfReference())
	assert.Equal(t, "Product categories", fks[0].TableComment)
	assert.Equal(t, "Product categories", fks[0].RefTableComment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_SQLServer(t *testing.T) {
	drv, mock := mockDriver(t, dialect.SQLServer)
	q := dialectQueries[dialect.SQLServer]
	in, err := NewInspector(drv, "")
	require.NoError(t, err)

	mock.ExpectQuery(escape(q.columns)).
		WithArgs("dbo", "note").
		WillReturnRows(sqlmock.NewRows([]string{"name", "comment", "data_type", "data_type", "max", "nullable"}).
			AddRow("body", "", "nvarchar", "nvarchar", -1, "YES"))
	columns, err := in.Columns(context.Background(), "note")
	require.NoError(t, err)
	require.Len(t, columns, 1)
	assert.Zero(t, columns[0].MaxLength)
	assert.True(t, columns[0].Nullable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_Errors(t *testing.T) {
	t.Run("unsupported dialect", func(t *testing.T) {
		drv, _ := mockDriver(t, dialect.SQLite)
		_, err := NewInspector(drv, "")
		require.Error(t, err)
	})
	t.Run("invalid schema", func(t *testing.T) {
		drv, _ := mockDriver(t, dialect.Postgres)
		_, err := NewInspector(drv, "public; DROP TABLE x")
		require.Error(t, err)
	})
	t.Run("query failure", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		in, err := NewInspector(drv, "")
		require.NoError(t, err)
		mock.ExpectQuery(escape(dialectQueries[dialect.Postgres].columns)).WillReturnError(errors.New("connection reset"))
		_, err = in.Columns(context.Background(), "user")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query columns of user")
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("SequelizeMeta"))
	assert.True(t, Excluded("atlas_schema_revisions"))
	assert.False(t, Excluded("user"))
}

func TestNewSource(t *testing.T) {
	pg, _ := mockDriver(t, dialect.Postgres)
	src, err := NewSource(pg, "", "")
	require.NoError(t, err)
	assert.IsType(t, &Inspector{}, src)

	lite, _ := mockDriver(t, dialect.SQLite)
	src, err = NewSource(lite, "", "")
	require.NoError(t, err)
	assert.IsType(t, &AtlasInspector{}, src)

	_, err = NewSource(pg, "catalog", "")
	require.Error(t, err)

	ms, _ := mockDriver(t, dialect.SQLServer)
	_, err = NewSource(ms, Atlas, "")
	require.Error(t, err)
}
