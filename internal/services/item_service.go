package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/itemdesk-be/internal/auth"
	"github.com/isdelr/itemdesk-be/internal/database"
	"github.com/isdelr/itemdesk-be/internal/models"
)

// ItemServiceProvider defines the interface for item services.
type ItemServiceProvider interface {
	ListItems(ctx context.Context, caller models.Caller, params ListParams) (models.ItemPage, error)
	CreateItem(ctx context.Context, caller models.Caller, input ItemInput) (models.Item, error)
	UpdateItem(ctx context.Context, caller models.Caller, id string, patch ItemPatch) (models.Item, error)
	DeleteItem(ctx context.Context, caller models.Caller, id string) error
	BulkDeleteItems(ctx context.Context, caller models.Caller, ids []string) (int64, error)
}

// ItemInput carries the fields of a new item.
type ItemInput struct {
	Title       string
	Description string
}

// ItemPatch carries the fields to change on an item; nil fields are left alone.
type ItemPatch struct {
	Title       *string
	Description *string
}

// ItemService provides business logic for item management.
type ItemService struct {
	db *database.DB
}

// NewItemService creates a new ItemService.
func NewItemService(db *database.DB) *ItemService {
	return &ItemService{db: db}
}

const itemWithOwnerColumns = `i.id, i.owner_id, i.title, i.description, i.created_at, i.updated_at,
	u.id, u.name, u.email, u.role`

// scanItemWithOwner scans a row selected with itemWithOwnerColumns. The owner
// columns come from a LEFT JOIN and may be NULL.
func scanItemWithOwner(scanner interface{ Scan(...any) error }) (models.Item, *models.OwnerSummary, error) {
	var item models.Item
	var ownerID, ownerName, ownerEmail, ownerRole sql.NullString
	err := scanner.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.CreatedAt, &item.UpdatedAt,
		&ownerID, &ownerName, &ownerEmail, &ownerRole,
	)
	if err != nil {
		return models.Item{}, nil, err
	}
	if !ownerID.Valid {
		return item, nil, nil
	}
	return item, &models.OwnerSummary{
		ID:    ownerID.String,
		Name:  ownerName.String,
		Email: ownerEmail.String,
		Role:  models.Role(ownerRole.String),
	}, nil
}

// queryItems runs a select over items joined with their owners. The owner
// summary is projected onto each item only when withOwner is set.
func (s *ItemService) queryItems(ctx context.Context, withOwner bool, query string, args ...any) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, owner, err := scanItemWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if withOwner {
			item.Owner = owner
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListItems returns one page of the items visible to caller, newest first.
// Non-admins only ever see their own items; admins see everything along with
// each item's owner summary.
func (s *ItemService) ListItems(ctx context.Context, caller models.Caller, params ListParams) (models.ItemPage, error) {
	params = params.normalize()
	scope := newItemScope(s.db.Lower, auth.ItemOwnerScope(caller), params.Search)

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items i"+scope.where(), scope.args...).Scan(&total); err != nil {
		return models.ItemPage{}, fmt.Errorf("count items: %w", err)
	}

	pagination := paginate(params.Page, params.Limit, total)
	offset := (pagination.Page - 1) * pagination.Limit

	query := "SELECT " + itemWithOwnerColumns + " FROM items i LEFT JOIN users u ON u.id = i.owner_id" +
		scope.where() + " ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?"
	args := append(append([]any{}, scope.args...), pagination.Limit, offset)

	items, err := s.queryItems(ctx, caller.IsAdmin(), query, args...)
	if err != nil {
		return models.ItemPage{}, err
	}
	return models.ItemPage{Data: items, Pagination: pagination}, nil
}

// RecentItems returns the n newest items across all owners, with owner summaries.
func (s *ItemService) RecentItems(ctx context.Context, n int) ([]models.Item, error) {
	query := "SELECT " + itemWithOwnerColumns + " FROM items i LEFT JOIN users u ON u.id = i.owner_id" +
		" ORDER BY i.created_at DESC, i.id DESC LIMIT ?"
	return s.queryItems(ctx, true, query, n)
}

// GetItemByID retrieves a single item.
func (s *ItemService) GetItemByID(ctx context.Context, id string) (models.Item, error) {
	var item models.Item
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, title, description, created_at, updated_at FROM items WHERE id = ?", id,
	).Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, models.NewError(models.ErrNotFound, "Item not found")
		}
		return models.Item{}, fmt.Errorf("query item by id: %w", err)
	}
	return item, nil
}

// CreateItem stores a new item owned by caller.
func (s *ItemService) CreateItem(ctx context.Context, caller models.Caller, input ItemInput) (models.Item, error) {
	now := time.Now().UTC()
	item := models.Item{
		ID:          uuid.New().String(),
		OwnerID:     caller.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, owner_id, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerID, item.Title, item.Description, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

// findModifiable loads an item and checks caller may change it. A missing
// item is reported before any permission check.
func (s *ItemService) findModifiable(ctx context.Context, caller models.Caller, id string) (models.Item, error) {
	if !models.ValidID(id) {
		return models.Item{}, models.NewError(models.ErrInvalidInput, "Invalid item id")
	}
	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if !auth.CanModifyItem.Allows(caller, item) {
		return models.Item{}, models.NewError(models.ErrForbidden, "Insufficient permissions")
	}
	return item, nil
}

// UpdateItem applies patch to an item owned by caller, or to any item when
// caller is an admin.
func (s *ItemService) UpdateItem(ctx context.Context, caller models.Caller, id string, patch ItemPatch) (models.Item, error) {
	item, err := s.findModifiable(ctx, caller, id)
	if err != nil {
		return models.Item{}, err
	}

	if patch.Title != nil {
		item.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		item.Description = strings.TrimSpace(*patch.Description)
	}
	item.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE items SET title = ?, description = ?, updated_at = ? WHERE id = ?",
		item.Title, item.Description, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item owned by caller, or any item when caller is an admin.
func (s *ItemService) DeleteItem(ctx context.Context, caller models.Caller, id string) error {
	item, err := s.findModifiable(ctx, caller, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", item.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// BulkDeleteItems deletes the given items within caller's scope and returns
// how many rows were removed. Malformed ids are dropped, and for non-admins
// ids they do not own are silently left untouched.
func (s *ItemService) BulkDeleteItems(ctx context.Context, caller models.Caller, ids []string) (int64, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if models.ValidID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, models.NewError(models.ErrInvalidInput, "Provide at least one valid item id")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(valid)), ", ")
	query := "DELETE FROM items WHERE id IN (" + placeholders + ")"
	args := make([]any, 0, len(valid)+1)
	for _, id := range valid {
		args = append(args, id)
	}
	if owner := auth.ItemOwnerScope(caller); owner != "" {
		query += " AND owner_id = ?"
		args = append(args, owner)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete items: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
