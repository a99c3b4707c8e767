package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/compiler/load"
)

func TestResolveSelfReference(t *testing.T) {
	edges := []load.ForeignKey{
		{Table: "category", Column: "parent_id", RefTable: "category", RefColumn: "id", Constraint: "category_parent_fk", OnDelete: "SET NULL"},
	}
	set := Resolve("category", edges)

	require.Len(t, set.Owning, 1)
	require.Len(t, set.Inverse, 1)

	parent := set.Owning[0]
	assert.Equal(t, Owning, parent.Direction)
	assert.Equal(t, "parentIdCategory", parent.Accessor)
	assert.Equal(t, "Category", parent.RemoteType)
	assert.Equal(t, "parent_id", parent.LocalColumn)
	assert.Equal(t, "id", parent.RemoteColumn)
	assert.Equal(t, "SET NULL", parent.OnDelete)
	assert.True(t, parent.SelfReference())

	children := set.Inverse[0]
	assert.Equal(t, Inverse, children.Direction)
	assert.Equal(t, "parentIdCategories", children.Accessor)
	assert.Equal(t, "id", children.LocalColumn)
	assert.Equal(t, "parent_id", children.RemoteColumn)
	assert.Equal(t, "parent_id", children.ChildColumn)

	assert.NotEqual(t, parent.Accessor, children.Accessor)
	assert.Empty(t, set.Imports())
}

func TestResolveParallelEdges(t *testing.T) {
	edges := []load.ForeignKey{
		{Table: "order", Column: "approved_by", RefTable: "user", RefColumn: "id", Constraint: "order_approved_by_fk"},
		{Table: "order", Column: "created_by", RefTable: "user", RefColumn: "id", Constraint: "order_created_by_fk", OnUpdate: "CASCADE"},
	}

	t.Run("owning side", func(t *testing.T) {
		set := Resolve("order", edges)
		require.Len(t, set.Owning, 2)
		assert.Empty(t, set.Inverse)
		assert.Equal(t, "approvedByUser", set.Owning[0].Accessor)
		assert.Equal(t, "createdByUser", set.Owning[1].Accessor)
		for _, r := range set.Owning {
			assert.Equal(t, "User", r.RemoteType)
			assert.Equal(t, Import{Table: "user", TypeName: "User", FileSlug: "user"}, r.Import)
		}
		assert.Equal(t, "CASCADE", set.Owning[1].OnUpdate)
		assert.Equal(t, []Import{ImportOf("user")}, set.Imports())
	})

	t.Run("inverse side", func(t *testing.T) {
		set := Resolve("user", edges)
		assert.Empty(t, set.Owning)
		require.Len(t, set.Inverse, 2)
		assert.Equal(t, "approvedByOrders", set.Inverse[0].Accessor)
		assert.Equal(t, "createdByOrders", set.Inverse[1].Accessor)
		assert.Equal(t, "Order", set.Inverse[0].RemoteType)
	})
}

func TestResolveIgnoresUnrelatedAndDuplicates(t *testing.T) {
	edges := []load.ForeignKey{
		{Table: "order", Column: "created_by", RefTable: "user", RefColumn: "id", Constraint: "fk1"},
		{Table: "order", Column: "created_by", RefTable: "user", RefColumn: "id", Constraint: "fk1", TableComment: "dup row"},
		{Table: "invoice", Column: "order_id", RefTable: "order", RefColumn: "id", Constraint: "fk2"},
	}
	set := Resolve("user", edges)
	assert.Empty(t, set.Owning)
	require.Len(t, set.Inverse, 1)
	assert.Equal(t, "order", set.Inverse[0].RemoteTable)

	set = Resolve("order", edges)
	assert.Len(t, set.Owning, 1)
	assert.Len(t, set.Inverse, 1)
	assert.Equal(t, "orderIdInvoices", set.Inverse[0].Accessor)
	assert.Equal(t, 2, set.Len())
	assert.Len(t, set.All(), 2)
	assert.Equal(t, []Import{ImportOf("user"), {Table: "invoice", TypeName: "Invoice", FileSlug: "invoice"}}, set.Imports())
}

func TestResolveCollidingAccessors(t *testing.T) {
	// Two constraints over the same column pair.
	edges := []load.ForeignKey{
		{Table: "order", Column: "user_id", RefTable: "user", RefColumn: "id", Constraint: "order_user_fk"},
		{Table: "order", Column: "user_id", RefTable: "user", RefColumn: "id", Constraint: "order_user_fk2"},
	}
	set := Resolve("order", edges)
	require.Len(t, set.Owning, 2)
	assert.Equal(t, "userIdUser", set.Owning[0].Accessor)
	assert.Equal(t, "userIdUserOrderUserFk2", set.Owning[1].Accessor)
	assert.Equal(t, "UserIdUser", set.Owning[0].Field())
}

func TestResolveOrphans(t *testing.T) {
	edges := []load.ForeignKey{
		{Table: "order", Column: "created_by", RefTable: "user", RefColumn: "id", Constraint: "fk1"},
		{Table: "order", Column: "shop_id", RefTable: "shop", RefColumn: "id", Constraint: "fk2"},
	}
	set := Resolve("order", edges, WithKnownTables("order", "user"))
	require.Len(t, set.Owning, 2)
	orphans := set.Orphans()
	require.Len(t, orphans, 1)
	assert.Equal(t, "shop", orphans[0].RemoteTable)

	assert.Empty(t, Resolve("order", edges).Orphans(), "no known tables means no orphan check")
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "M2O", Owning.String())
	assert.Equal(t, "O2M", Inverse.String())
}
