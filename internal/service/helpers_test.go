package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"LinkUp/internal/config"
	"LinkUp/internal/model"
	"LinkUp/internal/repository/mysql"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := mysql.Open(context.Background(), config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxRetries:   1,
	})
	require.NoError(t, err)
	require.NoError(t, mysql.Migrate(db))
	t.Cleanup(func() { _ = mysql.Close(db) })
	return db
}

// seedUser id 为 0 时自增
func seedUser(t *testing.T, db *gorm.DB, id uint64) *model.User {
	t.Helper()
	u := &model.User{ID: id, Name: fmt.Sprintf("user%d", id), Email: fmt.Sprintf("user%d@example.com", id), Password: "x"}
	if id == 0 {
		var n int64
		require.NoError(t, db.Model(&model.User{}).Count(&n).Error)
		u.Name, u.Email = fmt.Sprintf("anon%d", n), fmt.Sprintf("anon%d@example.com", n)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCreator(t *testing.T, db *gorm.DB, id, userID uint64, public bool) *model.Creator {
	t.Helper()
	c := &model.Creator{ID: id, UserID: userID, IsPublic: public}
	require.NoError(t, db.Create(c).Error)
	return c
}

func countRows(t *testing.T, db *gorm.DB, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(where, args...).Count(&n).Error)
	return n
}

func outboxEvents(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var rows []model.SubscriptionEvent
	require.NoError(t, db.Order("id ASC").Find(&rows).Error)
	events := make([]string, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.EventType)
	}
	return events
}
