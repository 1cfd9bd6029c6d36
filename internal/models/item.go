package models

import "time"

// Item is a record owned by exactly one user.
type Item struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Owner is only filled in by admin-facing reads.
	Owner *OwnerSummary `json:"ownerDetails,omitempty"`
}

// OwnerSummary is the denormalized view of an item's owner.
type OwnerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// Pagination describes the page returned by a list query.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// ItemPage is one page of a scoped item listing.
type ItemPage struct {
	Data       []Item     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Metrics holds aggregate counts shown on the admin dashboard.
type Metrics struct {
	TotalUsers int64 `json:"totalUsers"`
	TotalItems int64 `json:"totalItems"`
	AdminCount int64 `json:"adminCount"`
	UserCount  int64 `json:"userCount"`
}
