package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/compiler/relation"
	"github.com/syssam/tablegen/compiler/typemap"
)

// =============================================================================
// Registry Tests
// =============================================================================

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []Kind{KindEntity, KindService, KindInput, KindObject, KindResolver, KindModule}, r.Kinds())

	t.Run("descriptors default to all kinds", func(t *testing.T) {
		descs, err := r.Descriptors()
		require.NoError(t, err)
		assert.Len(t, descs, 6)
	})

	t.Run("descriptors are deduplicated", func(t *testing.T) {
		descs, err := r.Descriptors(KindEntity, KindEntity, KindModule)
		require.NoError(t, err)
		require.Len(t, descs, 2)
		assert.Equal(t, KindModule, descs[1].Kind)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := r.Descriptors("controller")
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("register rejects duplicates and missing functions", func(t *testing.T) {
		err := r.Register(&Descriptor{Kind: KindEntity, Emit: emitEntity, Dir: entitiesDir, FileName: entitiesDir})
		assert.True(t, IsConfigError(err))
		err = r.Register(&Descriptor{Kind: "custom"})
		assert.True(t, IsConfigError(err))
		assert.Error(t, r.Register(nil))
	})
}

func TestDescriptorPath(t *testing.T) {
	cfg := testConfig(t)
	paths := make(map[Kind]string)
	for _, d := range Builtin() {
		paths[d.Kind] = d.Path(cfg, "user_profile")
	}
	assert.Equal(t, map[Kind]string{
		KindEntity:   "src/entities/user-profile.entity.go",
		KindService:  "src/user-profile/user-profile.service.go",
		KindInput:    "src/dto/user-profile.input.go",
		KindObject:   "src/user-profile/model/user-profile.object.graphqls",
		KindResolver: "src/resolvers/user-profile.resolver.go",
		KindModule:   "src/modules/user-profile.module.go",
	}, paths)

	t.Run("empty suffix", func(t *testing.T) {
		d := &Descriptor{Kind: "plain", Dir: modulesDir, FileName: func(string) string { return "index" }}
		assert.Equal(t, "src/modules/index.go", d.Path(cfg, "user"))
	})
}

func TestEmit_EmptyTable(t *testing.T) {
	c := func() *Context {
		return NewContext(testConfig(t), Request{Table: load.Table{Name: "empty"}})
	}
	for _, d := range Builtin() {
		t.Run(string(d.Kind), func(t *testing.T) {
			a := d.Emit(c())
			assert.True(t, a.Empty())
			b, err := a.Render()
			require.NoError(t, err)
			assert.Nil(t, b)
		})
	}
}

func TestEmit_SystemColumnsAbsent(t *testing.T) {
	for _, d := range Builtin() {
		t.Run(string(d.Kind), func(t *testing.T) {
			out := render(t, d.Emit(testContext(t, "user")))
			assert.NotContains(t, out, "created_at")
			assert.NotContains(t, out, "createdAt")
			assert.NotContains(t, out, "CreatedAt")
			assert.NotContains(t, out, "updatedAt")
		})
	}
}

// =============================================================================
// Entity Tests
// =============================================================================

func TestEmitEntity(t *testing.T) {
	out := render(t, emitEntity(testContext(t, "user")))
	assert.Contains(t, out, "// Code generated by tablegen. DO NOT EDIT.")
	assert.Contains(t, out, "package entities")
	assert.Contains(t, out, `"example.com/app/src/utils"`)
	assert.Contains(t, out, "// Application users")
	assert.Contains(t, out, "type User struct {")
	assert.Contains(t, out, "utils.ContentEntity")
	assert.Contains(t, out, "// Name Display name")
	assert.Regexp(t, `Name\s+string\s+`+"`"+`gorm:"column:name;size:100;not null;comment:Display name" json:"name"`+"`", out)
	assert.Regexp(t, `Email\s+string\s+`+"`"+`gorm:"column:email;size:50" json:"email"`+"`", out)
	assert.Regexp(t, `Age\s+int64\s+`+"`"+`gorm:"column:age" json:"age"`+"`", out)
	assert.Regexp(t, `ApprovedByOrders\s+\[\]\*Order\s+`+"`"+`gorm:"foreignKey:ApprovedBy;references:ID" json:"approvedByOrders,omitempty"`+"`", out)
	assert.Regexp(t, `CreatedByOrders\s+\[\]\*Order`, out)
	assert.Contains(t, out, "func (User) TableName() string {")
	assert.Contains(t, out, `return "user"`)
	assert.NotRegexp(t, `\bID\s+string`, out)
}

func TestEmitEntity_Owning(t *testing.T) {
	out := render(t, emitEntity(testContext(t, "order")))
	assert.Regexp(t, `CreatedBy\s+string\s+`+"`"+`gorm:"column:created_by;not null" json:"createdBy"`+"`", out)
	assert.Regexp(t, `Amount\s+float64`, out)
	assert.Regexp(t, `Paid\s+bool`, out)
	assert.Regexp(t, `Meta\s+map\[string\]any\s+`+"`"+`gorm:"column:meta;serializer:json" json:"meta"`+"`", out)
	assert.Regexp(t, `CreatedByUser\s+\*User\s+`+"`"+`gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE" json:"createdByUser,omitempty"`+"`", out)
	assert.Regexp(t, `ApprovedByUser\s+\*User\s+`+"`"+`gorm:"foreignKey:ApprovedBy;references:ID" json:"approvedByUser,omitempty"`+"`", out)
}

func TestEmitters_RelationImport(t *testing.T) {
	c := testContext(t, "order")
	member := relation.Import{Table: "user", TypeName: "Member", FileSlug: "members"}
	for i := range c.Relations.Owning {
		c.Relations.Owning[i].Import = member
	}

	entity := render(t, emitEntity(c))
	assert.Regexp(t, `CreatedByUser\s+\*Member\s`, entity)
	assert.True(t, c.Imports.Has("example.com/app/src/entities", "Member"))

	module := render(t, emitModule(c))
	assert.Contains(t, module, `"example.com/app/src/members"`)
	assert.Contains(t, module, ".NewMemberService(db)")
}

func TestEmitEntity_SelfReference(t *testing.T) {
	c := testContext(t, "category")
	out := render(t, emitEntity(c))
	assert.Regexp(t, `ParentIdCategory\s+\*Category`, out)
	assert.Regexp(t, `ParentIdCategories\s+\[\]\*Category`, out)
	assert.Len(t, c.Relations.Owning, 1)
	assert.Len(t, c.Relations.Inverse, 1)
}

func TestGormTags(t *testing.T) {
	tests := []struct {
		name string
		col  load.Column
		want string
	}{
		{"sized", load.Column{Name: "code", RawType: "varchar(20)", MaxLength: 20}, "column:code;size:20;not null"},
		{"default size", load.Column{Name: "code", NativeType: "nvarchar", Nullable: true}, "column:code;size:50"},
		{"unsized string", load.Column{Name: "ref", RawType: "bigint", Nullable: true}, "column:ref"},
		{"comment", load.Column{Name: "n", RawType: "int", Comment: "a;b:c"}, "column:n;not null;comment:a,b c"},
		{"json", load.Column{Name: "meta", RawType: "jsonb", NativeType: "json"}, "column:meta;serializer:json;not null"},
		{"nullable json", load.Column{Name: "meta", NativeType: "json", Nullable: true}, "column:meta;serializer:json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gormColumnTag(tt.col, typemap.For(tt.col)))
		})
	}
}

// =============================================================================
// Service Tests
// =============================================================================

func TestEmitService(t *testing.T) {
	c := testContext(t, "user_profile")
	out := render(t, emitService(c))
	assert.Contains(t, out, "package userprofile")
	assert.Contains(t, out, "type UserProfileService struct {")
	assert.Contains(t, out, "*utils.ContentService[entities.UserProfile]")
	assert.Contains(t, out, "func NewUserProfileService(db *gorm.DB) *UserProfileService {")
	assert.Contains(t, out, "utils.NewContentService[entities.UserProfile](db)")
	assert.Contains(t, out, `"gorm.io/gorm"`)
	assert.True(t, c.Imports.Has("example.com/app/src/entities", "UserProfile"))
}

// =============================================================================
// Input Tests
// =============================================================================

func TestEmitInput(t *testing.T) {
	out := render(t, emitInput(testContext(t, "user")))
	assert.Contains(t, out, "package dto")
	assert.Contains(t, out, "type CreateUserInput struct {")
	assert.Regexp(t, `(?s)type CreateUserInput struct \{.*Name\s+string\s+`+"`"+`json:"name"`+"`", out)
	assert.Regexp(t, `Email\s+\*string\s+`+"`"+`json:"email,omitempty"`+"`", out)
	assert.Regexp(t, `(?s)type UpdateUserInput struct \{\s*ID\s+string\s+`+"`"+`json:"id"`+"`", out)
	assert.Regexp(t, `(?s)type SaveUserInput struct \{\s*ID\s+\*string\s+`+"`"+`json:"id,omitempty"`+"`", out)
	assert.Regexp(t, `CreatedByOrders\s+\[\]\*SaveOrderInput\s+`+"`"+`json:"createdByOrders,omitempty"`+"`", out)
}

func TestEmitInput_ObjectField(t *testing.T) {
	out := render(t, emitInput(testContext(t, "order")))
	assert.Regexp(t, `Meta\s+map\[string\]any`, out)
	assert.NotContains(t, out, "*map[string]any")
	assert.Regexp(t, `(?s)type CreateOrderInput struct \{.*Amount\s+float64`, out)
	assert.Regexp(t, `(?s)type UpdateOrderInput struct \{.*Amount\s+\*float64`, out)
}

// =============================================================================
// Object Tests
// =============================================================================

func TestEmitObject(t *testing.T) {
	out := render(t, emitObject(testContext(t, "user")))
	assert.Contains(t, out, "# Code generated by tablegen. DO NOT EDIT.")
	assert.Contains(t, out, "type User {")
	assert.Contains(t, out, "id: ID!")
	assert.Contains(t, out, "name: String!")
	assert.Contains(t, out, "email: String\n")
	assert.Contains(t, out, "age: Int\n")
	assert.Contains(t, out, "createdByOrders(param: QueryBuilderOptionsInput): [Order!]")
	assert.Contains(t, out, "input SaveUserInput {")
	assert.Contains(t, out, "approvedByOrders: [SaveOrderInput!]")
	assert.Contains(t, out, "extend type Query {")
	assert.Contains(t, out, "findUser(queryBuilderOptions: QueryBuilderOptionsInput): [User!]!")
	assert.Contains(t, out, "findUserCount(queryBuilderOptions: QueryBuilderOptionsInput): Int!")
	assert.Contains(t, out, "findUserByPk(id: ID!): User")
	assert.Contains(t, out, "extend type Mutation {")
	assert.Contains(t, out, "createUser(createUserInput: CreateUserInput!): User!")
	assert.Contains(t, out, "removeUserByIds(ids: [ID!]!): Int!")
}

func TestEmitObject_Validates(t *testing.T) {
	cfg := testConfig(t)
	sources := []*ast.Source{{Name: "schema.graphqls", Input: render(t, BaseSchema(cfg))}}
	for _, table := range []string{"category", "order", "user", "user_profile"} {
		sources = append(sources, &ast.Source{Name: table + ".graphqls", Input: render(t, emitObject(testContext(t, table)))})
	}
	schema, err := gqlparser.LoadSchema(sources...)
	require.NoError(t, err)

	order := schema.Types["Order"]
	require.NotNil(t, order)
	assert.Equal(t, "User", order.Fields.ForName("createdByUser").Type.Name())
	assert.Equal(t, "Float", order.Fields.ForName("amount").Type.Name())
	assert.Equal(t, "JSON", order.Fields.ForName("meta").Type.Name())
}

// =============================================================================
// Resolver Tests
// =============================================================================

func TestOperations(t *testing.T) {
	ops := Operations("user_profile")
	require.Len(t, ops, 8)
	var crud, mutations int
	for _, op := range ops {
		if op.CRUD {
			crud++
		}
		if op.Mutation {
			mutations++
		}
	}
	assert.Equal(t, 6, crud)
	assert.Equal(t, 5, mutations)
	assert.Equal(t, "FindUserProfileByPk", ops[2].Method)
	assert.Equal(t, "removeUserProfileByIds", ops[7].Field)
}

func TestEmitResolver(t *testing.T) {
	out := render(t, emitResolver(testContext(t, "user")))
	assert.Contains(t, out, "package resolvers")
	assert.Regexp(t, `UserService\s+\*user\.UserService`, out)
	assert.Regexp(t, `OrderService\s+\*order\.OrderService`, out)
	assert.Contains(t, out, "func NewUserResolver(userService *user.UserService, orderService *order.OrderService) *UserResolver {")
	assert.Contains(t, out, "func (r *UserResolver) FindUser(ctx context.Context, queryBuilderOptions *utils.QueryBuilderOptions) ([]*entities.User, error) {")
	assert.Contains(t, out, "return r.UserService.Count(ctx, queryBuilderOptions)")
	assert.Contains(t, out, "func (r *UserResolver) UpdateUser(ctx context.Context, updateUserInput dto.UpdateUserInput) (*entities.User, error) {")
	assert.Contains(t, out, "return r.UserService.Update(ctx, updateUserInput.ID, updateUserInput)")
	assert.Contains(t, out, "func (r *UserResolver) CreatedByOrders(ctx context.Context, obj *entities.User, param *utils.QueryBuilderOptions) ([]*entities.Order, error) {")
	assert.Contains(t, out, `utils.MergeWhere(param, map[string]any{"created_by": obj.ID})`)

	t.Run("save synchronizes children", func(t *testing.T) {
		assert.Contains(t, out, "if err := r.syncCreatedByOrders(ctx, saved, saveUserInput.CreatedByOrders); err != nil {")
		assert.Contains(t, out, "func (r *UserResolver) syncApprovedByOrders(ctx context.Context, parent *entities.User, children []*dto.SaveOrderInput) error {")
		assert.Contains(t, out, "if children == nil {")
		assert.Contains(t, out, `existing, err := r.OrderService.FindIDs(ctx, map[string]any{"approved_by": parent.ID})`)
		assert.Contains(t, out, `saved, err := r.OrderService.SaveWith(ctx, child, map[string]any{"approved_by": parent.ID})`)
		assert.Contains(t, out, "r.OrderService.RemoveByIds(ctx, stale)")
	})
}

func TestEmitResolver_Owning(t *testing.T) {
	out := render(t, emitResolver(testContext(t, "order")))
	assert.Contains(t, out, "func (r *OrderResolver) CreatedByUser(ctx context.Context, obj *entities.Order) (*entities.User, error) {")
	assert.Contains(t, out, `if obj.CreatedBy == "" {`)
	assert.Contains(t, out, "return r.UserService.FindByPk(ctx, obj.CreatedBy)")
	assert.NotContains(t, out, "func (r *OrderResolver) sync")
}

func TestEmitResolver_SelfReference(t *testing.T) {
	out := render(t, emitResolver(testContext(t, "category")))
	assert.Contains(t, out, "func NewCategoryResolver(categoryService *category.CategoryService) *CategoryResolver {")
	assert.Contains(t, out, "return r.CategoryService.FindByPk(ctx, obj.ParentID)")
	assert.Contains(t, out, `r.CategoryService.FindEntity(ctx, utils.MergeWhere(param, map[string]any{"parent_id": obj.ID}))`)
}

func TestEmitResolver_IntegerKey(t *testing.T) {
	c := NewContext(testConfig(t), Request{
		Table: load.Table{Name: "item"},
		Columns: []load.Column{
			column("item", "id", "varchar", false),
			column("item", "owner_no", "int", true),
		},
		ForeignKeys: []load.ForeignKey{
			{Table: "item", Column: "owner_no", RefTable: "owner", RefColumn: "no", Constraint: "item_owner_fk"},
		},
	})
	out := render(t, emitResolver(c))
	assert.Contains(t, out, "if obj.OwnerNo == 0 {")
	assert.Contains(t, out, "r.OwnerService.FindByPk(ctx, strconv.FormatInt(obj.OwnerNo, 10))")
}

func TestEmitResolver_UserProfile(t *testing.T) {
	c := testContext(t, "user_profile")
	out := render(t, emitResolver(c))
	assert.Equal(t, 8, strings.Count(out, "func (r *UserProfileResolver)"))
	assert.Zero(t, c.Relations.Len())
	assert.Contains(t, out, "func (r *UserProfileResolver) RemoveUserProfile(ctx context.Context, id string) (int, error) {")
	assert.Contains(t, out, "func (r *UserProfileResolver) RemoveUserProfileByIds(ctx context.Context, ids []string) (int, error) {")
	assert.Contains(t, out, "return saved, nil")

	entity := render(t, emitEntity(testContext(t, "user_profile")))
	assert.Contains(t, entity, "type UserProfile struct {")
	assert.Regexp(t, `DisplayName\s+string\s+`+"`"+`gorm:"column:display_name;size:50" json:"displayName"`+"`", entity)
	assert.NotRegexp(t, `\bID\s+string`, entity)
	assert.NotContains(t, entity, "CreatedAt")

	object := render(t, emitObject(testContext(t, "user_profile")))
	assert.Contains(t, object, "displayName: String\n")
	assert.NotContains(t, object, "displayName: String!")

	input := render(t, emitInput(testContext(t, "user_profile")))
	assert.Regexp(t, `(?s)type CreateUserProfileInput struct \{\s*DisplayName\s+\*string\s+`+"`"+`json:"displayName,omitempty"`+"`", input)
}

// =============================================================================
// Module Tests
// =============================================================================

func TestEmitModule(t *testing.T) {
	out := render(t, emitModule(testContext(t, "order")))
	assert.Contains(t, out, "package modules")
	assert.Regexp(t, `Service\s+\*order\.OrderService`, out)
	assert.Regexp(t, `Resolver\s+\*resolvers\.OrderResolver`, out)
	assert.Contains(t, out, "func NewOrderModule(db *gorm.DB) *OrderModule {")
	assert.Contains(t, out, "orderService := order.NewOrderService(db)")
	assert.Contains(t, out, "userService := user.NewUserService(db)")
	assert.Contains(t, out, "resolvers.NewOrderResolver(orderService, userService)")
	assert.Contains(t, out, "return []any{&entities.Order{}, &entities.User{}}")
}
