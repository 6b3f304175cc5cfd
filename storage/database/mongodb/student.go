package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/student"
)

func sortDoc(orderings ...core.DBOrdering) bson.D {
	doc := make(bson.D, 0, len(orderings))
	for _, ord := range orderings {
		direction := -1
		if ord.Ascending {
			direction = 1
		}
		doc = append(doc, bson.E{Key: ord.Field, Value: direction})
	}
	return doc
}

type studentDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	RollNumber      string    `bson:"roll_number"`
	AdmissionNumber string    `bson:"admission_number,omitempty"`
	Class           string    `bson:"class"`
	Section         string    `bson:"section"`
	Status          string    `bson:"status"`
	Photo           string    `bson:"photo,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (d studentDoc) toStudent() student.Student {
	return student.Student{
		ID:              d.ID,
		Name:            d.Name,
		RollNumber:      d.RollNumber,
		AdmissionNumber: d.AdmissionNumber,
		Class:           d.Class,
		Section:         d.Section,
		Status:          d.Status,
		Photo:           d.Photo,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db   *DB
	coll *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db, coll: db.db.Collection(StudentCollection)}
}

func (repo *studentRepository) QueryActiveStudents(ctx context.Context, class, section string) ([]student.Student, error) {
	ctx, cancel := repo.db.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"class": class, "section": section, "status": student.StatusActive}
	opts := options.Find().
		SetSort(sortDoc(student.RosterOrdering...)).
		SetCollation(&options.Collation{Locale: "en", NumericOrdering: true})

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []studentDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	students := make([]student.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpsertStudents(ctx context.Context, students ...student.Student) error {
	if len(students) == 0 {
		return nil
	}
	ctx, cancel := repo.db.withTimeout(ctx)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(students))
	for _, s := range students {
		set := bson.M{
			"name":        s.Name,
			"roll_number": s.RollNumber,
			"class":       s.Class,
			"section":     s.Section,
			"status":      s.Status,
			"updated_at":  s.UpdatedAt,
		}
		unset := bson.M{}
		if s.AdmissionNumber != "" {
			set["admission_number"] = s.AdmissionNumber
		} else {
			unset["admission_number"] = ""
		}
		if s.Photo != "" {
			set["photo"] = s.Photo
		} else {
			unset["photo"] = ""
		}

		update := bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": s.CreatedAt}}
		if len(unset) > 0 {
			update["$unset"] = unset
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": s.ID}).
			SetUpdate(update).
			SetUpsert(true))
	}

	if _, err := repo.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return errors.Wrap(err, "upserting students")
	}
	return nil
}
