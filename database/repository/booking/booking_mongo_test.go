package bookingRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"decorbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testNS = "decor.bookings"

func storedBooking(id string, status models.BookingStatus) bson.D {
	return bson.D{
		{Key: "id", Value: id},
		{Key: "name", Value: "Priya Sharma"},
		{Key: "email", Value: "priya@example.com"},
		{Key: "phone", Value: "+919876543210"},
		{Key: "eventDate", Value: time.Date(2030, 2, 14, 10, 0, 0, 0, time.UTC)},
		{Key: "eventDay", Value: "2030-02-14"},
		{Key: "package", Value: "Basic"},
		{Key: "packageDetails", Value: bson.D{{Key: "base", Value: 3000.0}}},
		{Key: "totalPrice", Value: 3000.0},
		{Key: "status", Value: string(status)},
		{Key: "createdAt", Value: baseNow},
		{Key: "updatedAt", Value: baseNow},
	}
}

func newMockRepo(mt *mtest.T) *MongoBookingRepo {
	mt.AddMockResponses(mtest.CreateSuccessResponse())
	repo, err := NewMongoBookingRepo(context.Background(), mt.DB)
	require.NoError(mt, err)
	return repo
}

func TestMongoBookingRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reserve inserts a pending booking", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		b, err := repo.ReserveIfFree(context.Background(), draftFor("2030-02-14", "Priya Sharma"), baseNow)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusPending, b.Status)
		assert.NotEmpty(mt, b.ID)
	})

	mt.Run("duplicate active day is a conflict", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: decor.bookings index: ux_bookings_active_day",
		}))

		_, err := repo.ReserveIfFree(context.Background(), draftFor("2030-02-14", "Late"), baseNow)
		require.Error(mt, err)
		assert.True(mt, models.IsConflict(err))
	})

	mt.Run("other write failures are infrastructure errors", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := repo.ReserveIfFree(context.Background(), draftFor("2030-02-14", "Late"), baseNow)
		require.Error(mt, err)
		assert.False(mt, models.IsConflict(err))
		assert.True(mt, models.IsInfrastructure(err))
	})

	mt.Run("held day is reported", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		held, err := repo.IsDayHeld(context.Background(), "2030-02-14")
		require.NoError(mt, err)
		assert.True(mt, held)
	})

	mt.Run("missing booking is not found", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.True(mt, models.IsNotFound(err))
	})

	mt.Run("status change returns the updated booking", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: storedBooking("b1", models.StatusConfirmed)},
		})

		b, err := repo.CompareAndSetStatus(context.Background(), "b1", models.StatusPending, models.StatusConfirmed, baseNow)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusConfirmed, b.Status)
		assert.Equal(mt, 3000.0, b.TotalPrice)
	})

	mt.Run("lost race reports a stale status", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, storedBooking("b1", models.StatusCancelled)),
		)

		_, err := repo.CompareAndSetStatus(context.Background(), "b1", models.StatusPending, models.StatusConfirmed, baseNow)
		assert.True(mt, errors.Is(err, models.ErrStaleStatus), "got %v", err)
	})

	mt.Run("totals come from one facet aggregation", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.ClearEvents()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "n", Value: int32(6)}}}},
			{Key: "monthly", Value: bson.A{bson.D{{Key: "n", Value: int32(3)}}}},
			{Key: "pending", Value: bson.A{}},
			{Key: "revenue", Value: bson.A{bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: 13000.0}}}},
		}))

		totals, err := repo.Totals(context.Background(), baseNow, baseNow)
		require.NoError(mt, err)
		assert.Equal(mt, models.BookingTotals{Total: 6, Monthly: 3, Pending: 0, Revenue: 13000}, *totals)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "aggregate", started.CommandName)
		stage, err := started.Command.LookupErr("pipeline", "0", "$facet")
		require.NoError(mt, err)
		assert.NotEmpty(mt, stage.Document())
	})

	mt.Run("revenue is grouped by month", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int32(1)}, {Key: "revenue", Value: 5000.0}, {Key: "bookings", Value: int32(1)}},
			bson.D{{Key: "_id", Value: int32(3)}, {Key: "revenue", Value: 7000.0}, {Key: "bookings", Value: int32(1)}},
		))

		months, err := repo.RevenueByMonth(context.Background(), baseNow, baseNow.AddDate(1, 0, 0), time.UTC)
		require.NoError(mt, err)
		assert.Equal(mt, []models.MonthlyRevenue{
			{Month: 1, Revenue: 5000, Bookings: 1},
			{Month: 3, Revenue: 7000, Bookings: 1},
		}, months)
	})

	mt.Run("package stats break ties by name", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Popular"}, {Key: "count", Value: int32(2)}, {Key: "revenue", Value: 12000.0}},
			bson.D{{Key: "_id", Value: "Basic"}, {Key: "count", Value: int32(2)}, {Key: "revenue", Value: 6000.0}},
		))

		stats, err := repo.PackageStats(context.Background())
		require.NoError(mt, err)
		require.Len(mt, stats, 2)
		assert.Equal(mt, models.PackageBasic, stats[0].Package)
		assert.Equal(mt, models.PackagePopular, stats[1].Package)
	})

	mt.Run("upcoming decodes stored bookings", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, storedBooking("b1", models.StatusConfirmed)))

		upcoming, err := repo.Upcoming(context.Background(), baseNow, 5)
		require.NoError(mt, err)
		require.Len(mt, upcoming, 1)
		assert.Equal(mt, "b1", upcoming[0].ID)
	})

	mt.Run("aggregation failure is an infrastructure error", func(mt *mtest.T) {
		repo := newMockRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad value"}))

		_, err := repo.PackageStats(context.Background())
		assert.True(mt, models.IsInfrastructure(err))
	})
}
