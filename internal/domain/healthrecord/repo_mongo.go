package healthrecord

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection the record authoring service writes.
const CollectionName = "healthrecords"

// recordDoc mirrors the stored document. worker and patient hold profile
// UUIDs as strings.
type recordDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Worker    string             `bson:"worker,omitempty"`
	Patient   string             `bson:"patient,omitempty"`
	Diagnosis string             `bson:"diagnosis"`
	Date      time.Time          `bson:"date"`
}

func (d *recordDoc) toRecord() *Record {
	subject := d.Worker
	if subject == "" {
		subject = d.Patient
	}
	return &Record{
		ID:        d.ID.Hex(),
		SubjectID: subject,
		Diagnosis: d.Diagnosis,
		Date:      d.Date.UTC(),
	}
}

type readerMongo struct {
	coll *mongo.Collection
}

func NewReaderMongo(db *mongo.Database) Reader {
	return &readerMongo{coll: db.Collection(CollectionName)}
}

func subjectFilter(subjectID uuid.UUID) bson.M {
	id := subjectID.String()
	return bson.M{"$or": bson.A{
		bson.M{"worker": id},
		bson.M{"patient": id},
	}}
}

func (r *readerMongo) ListRecentBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]*Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, subjectFilter(subjectID), opts)
	if err != nil {
		return nil, fmt.Errorf("find health records: %w", err)
	}
	defer cur.Close(ctx)

	var items []*Record
	for cur.Next(ctx) {
		var doc recordDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode health record: %w", err)
		}
		items = append(items, doc.toRecord())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate health records: %w", err)
	}
	return items, nil
}
