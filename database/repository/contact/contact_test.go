package contactRepo

import (
	"context"
	"testing"
	"time"

	"decorbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepo(t *testing.T) ContactRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewGormContactRepo(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestContactRepository(t *testing.T) {
	factories := map[string]func(t *testing.T) ContactRepository{
		"memory": func(*testing.T) ContactRepository { return NewMemoryContactRepo() },
		"sqlite": newSQLiteRepo,
	}
	now := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			first, err := repo.Create(ctx, models.ContactDraft{Name: "Asha", Email: "asha@example.com", Message: "Do you cover Pune?"}, now)
			require.NoError(t, err)
			assert.Equal(t, models.ContactNew, first.Status)

			second, err := repo.Create(ctx, models.ContactDraft{Name: "Ravi", Email: "ravi@example.com", Phone: "+911234567890", Message: "Price for Popular?"}, now.Add(time.Minute))
			require.NoError(t, err)

			updated, err := repo.UpdateStatus(ctx, first.ID, models.ContactReplied, now.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, models.ContactReplied, updated.Status)
			assert.Equal(t, "Asha", updated.Name)

			_, err = repo.UpdateStatus(ctx, "missing", models.ContactRead, now)
			assert.True(t, models.IsNotFound(err))

			page, err := repo.List(ctx, models.ContactFilter{})
			require.NoError(t, err)
			assert.EqualValues(t, 2, page.Total)
			require.Len(t, page.Items, 2)
			assert.Equal(t, second.ID, page.Items[0].ID)

			status := models.ContactNew
			page, err = repo.List(ctx, models.ContactFilter{Status: &status})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, second.ID, page.Items[0].ID)

			unread, err := repo.CountByStatus(ctx, models.ContactNew)
			require.NoError(t, err)
			assert.EqualValues(t, 1, unread)
			read, err := repo.CountByStatus(ctx, models.ContactRead)
			require.NoError(t, err)
			assert.Zero(t, read)
		})
	}
}

func TestMongoContactRepo_CountByStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts unread messages", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo, err := NewMongoContactRepo(context.Background(), mt.DB)
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "decor.contacts", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))

		n, err := repo.CountByStatus(context.Background(), models.ContactNew)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})
}
