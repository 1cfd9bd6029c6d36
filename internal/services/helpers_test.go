package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/itemdesk-be/internal/database"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/isdelr/itemdesk-be/internal/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

type fixture struct {
	db      *database.DB
	users   *services.UserService
	items   *services.ItemService
	metrics *services.MetricsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.New(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	items := services.NewItemService(db)
	return &fixture{
		db:      db,
		users:   services.NewUserService(db, bcrypt.MinCost),
		items:   items,
		metrics: services.NewMetricsService(db, items),
	}
}

func (f *fixture) createUser(t *testing.T, name, email string, role models.Role) models.Caller {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), services.NewUser{
		Name: name, Email: email, Password: testPassword, Role: role,
	})
	require.NoError(t, err)
	return models.CallerFromUser(u)
}

func (f *fixture) createItem(t *testing.T, owner models.Caller, title, description string) models.Item {
	t.Helper()
	item, err := f.items.CreateItem(context.Background(), owner, services.ItemInput{Title: title, Description: description})
	require.NoError(t, err)
	// Keep creation timestamps strictly increasing so ordering is deterministic.
	time.Sleep(2 * time.Millisecond)
	return item
}
