package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"decorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const opTimeout = 5 * time.Second

// bookingDocument is the stored shape. activeDay is present only while the
// booking is pending or confirmed; a partial unique index on it rejects a
// second active booking for the same day.
type bookingDocument struct {
	models.Booking `bson:",inline"`
	ActiveDay      *string `bson:"activeDay,omitempty"`
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo binds the repository to the "bookings" collection of db
// and makes sure its indexes exist.
func NewMongoBookingRepo(ctx context.Context, db *mongo.Database) (*MongoBookingRepo, error) {
	r := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// ensureIndexes creates the uniqueness guard plus the indexes used by lookups
// and listings.
func (r *MongoBookingRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_bookings_id")},
		{
			Keys: bson.D{{Key: "activeDay", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("ux_bookings_active_day").
				SetPartialFilterExpression(bson.M{"activeDay": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "eventDay", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("ix_bookings_day_status")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("ix_bookings_email")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("ix_bookings_created")},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func activeStatuses() bson.A {
	return bson.A{models.StatusPending, models.StatusConfirmed}
}

func (r *MongoBookingRepo) IsDayHeld(ctx context.Context, day string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"eventDay": day, "status": bson.M{"$in": activeStatuses()}}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, models.Infra("check event day", err)
	}
	return n > 0, nil
}

func (r *MongoBookingRepo) ReserveIfFree(ctx context.Context, draft models.BookingDraft, now time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	b := newBooking(draft, now)
	day := b.EventDay
	doc := bookingDocument{Booking: b, ActiveDay: &day}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDayHeld(day)
		}
		return nil, models.Infra("insert booking", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc bookingDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "booking", ID: id, Err: err}
		}
		return nil, models.Infra("find booking", err)
	}
	return &doc.Booking, nil
}

func (r *MongoBookingRepo) CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, now time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": to, "updatedAt": now}}
	if !to.IsActive() {
		update["$unset"] = bson.M{"activeDay": ""}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookingDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id, "status": from}, update, opts).Decode(&doc)
	if err == nil {
		return &doc.Booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.Infra("update booking status", err)
	}

	// Either the booking is gone or someone else moved it first.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, models.ErrStaleStatus
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) (*models.BookingPage, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	page, limit := normalizePage(filter.Page, filter.Limit)
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.From != nil || filter.To != nil {
		rng := bson.M{}
		if filter.From != nil {
			rng["$gte"] = *filter.From
		}
		if filter.To != nil {
			rng["$lte"] = *filter.To
		}
		query["eventDate"] = rng
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, models.Infra("count bookings", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, models.Infra("list bookings", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Booking, 0, limit)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, models.Infra("decode booking", err)
		}
		items = append(items, doc.Booking)
	}
	if err := cursor.Err(); err != nil {
		return nil, models.Infra("booking cursor", err)
	}
	return &models.BookingPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func revenueStatuses() bson.A {
	out := bson.A{}
	for _, s := range models.RevenueStatuses {
		out = append(out, s)
	}
	return out
}

type countResult struct {
	N int64 `bson:"n"`
}

func firstCount(rs []countResult) int64 {
	if len(rs) == 0 {
		return 0
	}
	return rs[0].N
}

// Totals runs every dashboard counter in one $facet round trip.
func (r *MongoBookingRepo) Totals(ctx context.Context, monthStart, yearStart time.Time) (*models.BookingTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count := bson.D{{Key: "$count", Value: "n"}}
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{count}},
			{Key: "monthly", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": monthStart}}}},
				count,
			}},
			{Key: "pending", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.M{"status": models.StatusPending}}},
				count,
			}},
			{Key: "revenue", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.M{
					"createdAt": bson.M{"$gte": yearStart},
					"status":    bson.M{"$in": revenueStatuses()},
				}}},
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
				}}},
			}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.Infra("aggregate booking totals", err)
	}
	var res []struct {
		Total   []countResult `bson:"total"`
		Monthly []countResult `bson:"monthly"`
		Pending []countResult `bson:"pending"`
		Revenue []struct {
			Total float64 `bson:"total"`
		} `bson:"revenue"`
	}
	if err := cursor.All(ctx, &res); err != nil {
		return nil, models.Infra("decode booking totals", err)
	}

	out := &models.BookingTotals{}
	if len(res) == 0 {
		return out, nil
	}
	out.Total = firstCount(res[0].Total)
	out.Monthly = firstCount(res[0].Monthly)
	out.Pending = firstCount(res[0].Pending)
	if len(res[0].Revenue) > 0 {
		out.Revenue = res[0].Revenue[0].Total
	}
	return out, nil
}

func (r *MongoBookingRepo) RevenueByMonth(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.MonthlyRevenue, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": from, "$lt": to},
			"status":    bson.M{"$in": revenueStatuses()},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: bson.D{
				{Key: "date", Value: "$createdAt"},
				{Key: "timezone", Value: loc.String()},
			}}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
			{Key: "bookings", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.Infra("aggregate revenue", err)
	}
	var rows []struct {
		Month    int     `bson:"_id"`
		Revenue  float64 `bson:"revenue"`
		Bookings int64   `bson:"bookings"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, models.Infra("decode revenue", err)
	}

	out := make([]models.MonthlyRevenue, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MonthlyRevenue{Month: row.Month, Revenue: row.Revenue, Bookings: row.Bookings})
	}
	return out, nil
}

func (r *MongoBookingRepo) PackageStats(ctx context.Context) ([]models.PackageStat, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$package"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.Infra("aggregate packages", err)
	}
	var rows []struct {
		Package string  `bson:"_id"`
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, models.Infra("decode package stats", err)
	}

	out := make([]models.PackageStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.PackageStat{Package: models.PackageKind(row.Package), Count: row.Count, Revenue: row.Revenue})
	}
	sortPackageStats(out)
	return out, nil
}

func (r *MongoBookingRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := bson.M{"eventDate": bson.M{"$gte": from}, "status": bson.M{"$in": activeStatuses()}}
	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, models.Infra("list upcoming bookings", err)
	}
	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.Infra("decode upcoming bookings", err)
	}

	out := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Booking)
	}
	return out, nil
}

func (r *MongoBookingRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
