package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
)

type Appointments struct {
	coll *mongo.Collection
}

func NewAppointments(db *mongo.Database) *Appointments {
	return &Appointments{coll: db.Collection(appointmentsCollection)}
}

// Create relies on the uniq_active_slot index: two concurrent inserts for
// the same active slot cannot both succeed.
func (s *Appointments) Create(ctx context.Context, a *models.Appointment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.SyncSlot()
	_, err := s.coll.InsertOne(ctx, a)
	return translate(err)
}

func (s *Appointments) ByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Appointments) ActiveInSlot(ctx context.Context, slotKey string) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.coll.FindOne(ctx, bson.M{"slotKey": slotKey}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Appointments) Find(ctx context.Context, f store.AppointmentFilter) ([]models.Appointment, error) {
	filter := bson.M{}
	if !f.CustomerID.IsZero() {
		filter["customer"] = f.CustomerID
	}
	if !f.DoctorID.IsZero() {
		filter["doctor"] = f.DoctorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		dateRange := bson.M{}
		if !f.From.IsZero() {
			dateRange["$gte"] = f.From
		}
		if !f.To.IsZero() {
			dateRange["$lte"] = f.To
		}
		filter["date"] = dateRange
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appointments, nil
}

// Patch $sets only the given fields. A status change also sets or unsets
// slotKey in the same update, so the uniq_active_slot index arbitrates
// against concurrent bookings. Doctor, date and time never change after
// creation, which is what makes reading them first safe.
func (s *Appointments) Patch(ctx context.Context, id primitive.ObjectID, p store.AppointmentPatch) (*models.Appointment, error) {
	filter := bson.M{"_id": id}
	if p.IfStatus != "" {
		filter["status"] = p.IfStatus
	}
	set := bson.M{"updatedAt": p.UpdatedAt}
	update := bson.M{"$set": set}
	if p.DoctorNotes != nil {
		set["doctorNotes"] = *p.DoctorNotes
	}
	if p.VisitSummary != nil {
		set["visitSummary"] = *p.VisitSummary
	}
	if p.Status != nil {
		set["status"] = *p.Status
		if p.Status.Active() {
			var slot struct {
				DoctorID primitive.ObjectID `bson:"doctor"`
				Date     time.Time          `bson:"date"`
				Time     string             `bson:"time"`
			}
			proj := options.FindOne().SetProjection(bson.M{"doctor": 1, "date": 1, "time": 1})
			if err := s.coll.FindOne(ctx, bson.M{"_id": id}, proj).Decode(&slot); err != nil {
				return nil, translate(err)
			}
			set["slotKey"] = models.SlotKey(slot.DoctorID, slot.Date, slot.Time)
		} else {
			update["$unset"] = bson.M{"slotKey": ""}
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Appointment
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) && p.IfStatus != "" {
		if n, cerr := s.coll.CountDocuments(ctx, bson.M{"_id": id}); cerr == nil && n > 0 {
			return nil, fmt.Errorf("%w: appointment %s is no longer %s", store.ErrStale, id.Hex(), p.IfStatus)
		}
	}
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
