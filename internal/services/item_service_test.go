package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/isdelr/itemdesk-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func itemIDs(items []models.Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestListItems_ScopesToOwnerUnlessAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := f.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	admin := f.createUser(t, "Root", "root@example.com", models.RoleAdmin)

	a1 := f.createItem(t, alice, "Alpha", "")
	b1 := f.createItem(t, bob, "Bravo", "")
	a2 := f.createItem(t, alice, "Charlie", "")

	page, err := f.items.ListItems(ctx, alice, services.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{a2.ID, a1.ID}, itemIDs(page.Data))
	for _, it := range page.Data {
		assert.Equal(t, alice.ID, it.OwnerID)
		assert.Nil(t, it.Owner, "non-admins never get owner details")
	}

	page, err = f.items.ListItems(ctx, admin, services.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{a2.ID, b1.ID, a1.ID}, itemIDs(page.Data))
	require.NotNil(t, page.Data[1].Owner)
	assert.Equal(t, models.OwnerSummary{ID: bob.ID, Name: "Bob", Email: "bob@example.com", Role: models.RoleUser}, *page.Data[1].Owner)
}

func TestListItems_SearchIsLiteralAndCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	dot := f.createItem(t, alice, "Version a.b", "")
	axb := f.createItem(t, alice, "Version axb", "")
	pct := f.createItem(t, alice, "Discount", "Save 100% today")
	f.createItem(t, alice, "Plain", "nothing here")
	desc := f.createItem(t, alice, "Notes", "Contains the MAGIC word")

	tests := []struct {
		search string
		want   []string
	}{
		{"a.b", []string{dot.ID}},
		{"%", []string{pct.ID}},
		{"magic", []string{desc.ID}},
		{"VERSION", []string{axb.ID, dot.ID}},
		{"(", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := f.items.ListItems(ctx, alice, services.ListParams{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemIDs(page.Data))
		})
	}
}

func TestListItems_SearchStaysWithinScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := f.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	f.createItem(t, alice, "Shared word", "")
	f.createItem(t, bob, "Shared word", "")

	page, err := f.items.ListItems(ctx, alice, services.ListParams{Search: "shared"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, alice.ID, page.Data[0].OwnerID)
	assert.EqualValues(t, 1, page.Pagination.TotalItems)
}

func TestListItems_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	for i := 0; i < 12; i++ {
		f.createItem(t, alice, fmt.Sprintf("Item %02d", i), "")
	}

	tests := []struct {
		name      string
		params    services.ListParams
		wantPage  int
		wantLimit int
		wantLen   int
		wantPages int
	}{
		{"defaults", services.ListParams{}, 1, 10, 10, 2},
		{"second page", services.ListParams{Page: 2}, 2, 10, 2, 2},
		{"page past end clamps", services.ListParams{Page: 9}, 2, 10, 2, 2},
		{"negative page", services.ListParams{Page: -3}, 1, 10, 10, 2},
		{"limit capped", services.ListParams{Limit: 500}, 1, 50, 12, 1},
		{"negative limit", services.ListParams{Limit: -1}, 1, 1, 1, 12},
		{"small pages", services.ListParams{Page: 3, Limit: 5}, 3, 5, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.items.ListItems(ctx, alice, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Pagination.Page)
			assert.Equal(t, tt.wantLimit, page.Pagination.Limit)
			assert.Equal(t, tt.wantPages, page.Pagination.TotalPages)
			assert.EqualValues(t, 12, page.Pagination.TotalItems)
			assert.Len(t, page.Data, tt.wantLen)
		})
	}
}

func TestListItems_EmptyHasOnePage(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	page, err := f.items.ListItems(context.Background(), alice, services.ListParams{Page: 4})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, TotalItems: 0, TotalPages: 1}, page.Pagination)
}

func TestCreateItem_TrimsAndOwnsByCaller(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	item, err := f.items.CreateItem(context.Background(), alice, services.ItemInput{Title: "  Groceries ", Description: " milk "})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, item.OwnerID)
	assert.Equal(t, "Groceries", item.Title)
	assert.Equal(t, "milk", item.Description)
	assert.True(t, models.ValidID(item.ID))

	stored, err := f.items.GetItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, stored.Title)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := f.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	admin := f.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	item := f.createItem(t, alice, "Original", "keep me")

	t.Run("owner changes title only", func(t *testing.T) {
		updated, err := f.items.UpdateItem(ctx, alice, item.ID, services.ItemPatch{Title: ptr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "keep me", updated.Description)
		assert.True(t, !updated.UpdatedAt.Before(item.UpdatedAt))
	})

	t.Run("other user is forbidden and nothing changes", func(t *testing.T) {
		_, err := f.items.UpdateItem(ctx, bob, item.ID, services.ItemPatch{Title: ptr("Hijacked")})
		require.ErrorIs(t, err, models.ErrForbidden)
		stored, err := f.items.GetItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Title)
	})

	t.Run("admin may update any item", func(t *testing.T) {
		updated, err := f.items.UpdateItem(ctx, admin, item.ID, services.ItemPatch{Description: ptr("")})
		require.NoError(t, err)
		assert.Equal(t, "", updated.Description)
		assert.Equal(t, alice.ID, updated.OwnerID)
	})

	t.Run("missing item is not found before permissions", func(t *testing.T) {
		_, err := f.items.UpdateItem(ctx, bob, uuid.NewString(), services.ItemPatch{Title: ptr("x")})
		require.ErrorIs(t, err, models.ErrNotFound)
		assert.Equal(t, "Item not found", models.MessageOf(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.items.UpdateItem(ctx, alice, "not-an-id", services.ItemPatch{})
		require.ErrorIs(t, err, models.ErrInvalidInput)
		assert.Equal(t, "Invalid item id", models.MessageOf(err))
	})
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := f.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	admin := f.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	first := f.createItem(t, alice, "First", "")
	second := f.createItem(t, alice, "Second", "")

	require.ErrorIs(t, f.items.DeleteItem(ctx, bob, first.ID), models.ErrForbidden)
	require.NoError(t, f.items.DeleteItem(ctx, alice, first.ID))
	require.ErrorIs(t, f.items.DeleteItem(ctx, alice, first.ID), models.ErrNotFound)
	require.NoError(t, f.items.DeleteItem(ctx, admin, second.ID))
	require.ErrorIs(t, f.items.DeleteItem(ctx, alice, "bogus"), models.ErrInvalidInput)
}

func TestBulkDeleteItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := f.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	admin := f.createUser(t, "Root", "root@example.com", models.RoleAdmin)

	a1 := f.createItem(t, alice, "A one", "")
	a2 := f.createItem(t, alice, "A two", "")
	b1 := f.createItem(t, bob, "B one", "")
	b2 := f.createItem(t, bob, "B two", "")

	t.Run("no valid ids", func(t *testing.T) {
		_, err := f.items.BulkDeleteItems(ctx, alice, []string{"x", ""})
		require.ErrorIs(t, err, models.ErrInvalidInput)
		assert.Equal(t, "Provide at least one valid item id", models.MessageOf(err))
	})

	t.Run("non-admin only deletes own items", func(t *testing.T) {
		n, err := f.items.BulkDeleteItems(ctx, alice, []string{a1.ID, b1.ID, "junk", uuid.NewString()})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = f.items.GetItemByID(ctx, a1.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
		_, err = f.items.GetItemByID(ctx, b1.ID)
		require.NoError(t, err)
	})

	t.Run("admin deletes across owners", func(t *testing.T) {
		n, err := f.items.BulkDeleteItems(ctx, admin, []string{a2.ID, b1.ID, b2.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		page, err := f.items.ListItems(ctx, admin, services.ListParams{})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\now`, services.EscapeLike(`50%_off\now`))
	assert.Equal(t, "a.b*c", services.EscapeLike("a.b*c"))
}

func TestListItems_SearchFoldsNonASCII(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	ecole := f.createItem(t, alice, "École notes", "")
	strasse := f.createItem(t, alice, "Errands", "ÜBER die Straße")
	f.createItem(t, alice, "Plain", "ascii only")

	tests := []struct {
		search string
		want   []string
	}{
		{"École", []string{ecole.ID}},
		{"école", []string{ecole.ID}},
		{"ÉCOLE", []string{ecole.ID}},
		{"cole", []string{ecole.ID}},
		{"über", []string{strasse.ID}},
		{"straße", []string{strasse.ID}},
		{"Ecole", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := f.items.ListItems(ctx, alice, services.ListParams{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemIDs(page.Data))
		})
	}
}
