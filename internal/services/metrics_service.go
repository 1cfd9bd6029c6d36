package services

import (
	"context"
	"fmt"

	"github.com/isdelr/itemdesk-be/internal/database"
	"github.com/isdelr/itemdesk-be/internal/models"
)

// RecentItemsLimit is how many of the newest items the admin overview carries.
const RecentItemsLimit = 5

// Overview is the admin dashboard summary.
type Overview struct {
	Metrics     models.Metrics `json:"metrics"`
	RecentItems []models.Item  `json:"recentItems"`
}

// MetricsServiceProvider defines the interface for the admin overview.
type MetricsServiceProvider interface {
	GetOverview(ctx context.Context) (Overview, error)
}

// MetricsService aggregates record counts across users and items.
type MetricsService struct {
	db    *database.DB
	items *ItemService
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(db *database.DB, items *ItemService) *MetricsService {
	return &MetricsService{db: db, items: items}
}

// GetOverview returns the user and item counts plus the newest items.
func (s *MetricsService) GetOverview(ctx context.Context) (Overview, error) {
	var m models.Metrics
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM items),
			(SELECT COUNT(*) FROM users WHERE role = ?),
			(SELECT COUNT(*) FROM users WHERE role = ?)`,
		string(models.RoleAdmin), string(models.RoleUser),
	).Scan(&m.TotalUsers, &m.TotalItems, &m.AdminCount, &m.UserCount)
	if err != nil {
		return Overview{}, fmt.Errorf("count records: %w", err)
	}

	recent, err := s.items.RecentItems(ctx, RecentItemsLimit)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Metrics: m, RecentItems: recent}, nil
}
