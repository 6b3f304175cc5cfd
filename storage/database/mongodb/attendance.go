package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/masomo-attendance/core/attendance"
)

type (
	sheetDoc struct {
		ID            string      `bson:"_id"`
		Date          string      `bson:"date"`
		Class         string      `bson:"class"`
		Section       string      `bson:"section"`
		Records       []recordDoc `bson:"records"`
		TotalStudents int         `bson:"total_students"`
		PresentCount  int         `bson:"present_count"`
		AbsentCount   int         `bson:"absent_count"`
		SubmittedBy   string      `bson:"submitted_by"`
		SubmittedName string      `bson:"submitted_name"`
		SubmittedAt   time.Time   `bson:"submitted_at"`
		LastUpdated   time.Time   `bson:"last_updated"`
	}

	recordDoc struct {
		StudentID   string `bson:"student_id"`
		Name        string `bson:"name"`
		RollNumber  string `bson:"roll_number"`
		AdmissionNo string `bson:"admission_no"`
		Class       string `bson:"class"`
		Section     string `bson:"section"`
		Status      string `bson:"status"`
	}
)

func newSheetDoc(sheet attendance.Sheet) sheetDoc {
	doc := sheetDoc{
		ID:            sheet.ID,
		Date:          sheet.Date,
		Class:         sheet.Class,
		Section:       sheet.Section,
		Records:       make([]recordDoc, 0, len(sheet.Records)),
		TotalStudents: sheet.TotalStudents,
		PresentCount:  sheet.PresentCount,
		AbsentCount:   sheet.AbsentCount,
		SubmittedBy:   sheet.SubmittedBy,
		SubmittedName: sheet.SubmittedName,
		SubmittedAt:   sheet.SubmittedAt,
		LastUpdated:   sheet.LastUpdated,
	}
	for _, r := range sheet.Records {
		doc.Records = append(doc.Records, recordDoc{
			StudentID:   r.StudentID,
			Name:        r.Name,
			RollNumber:  r.RollNumber,
			AdmissionNo: r.AdmissionNo,
			Class:       r.Class,
			Section:     r.Section,
			Status:      string(r.Status),
		})
	}
	return doc
}

func (d sheetDoc) toSheet() attendance.Sheet {
	sheet := attendance.Sheet{
		ID:            d.ID,
		Date:          d.Date,
		Class:         d.Class,
		Section:       d.Section,
		Records:       make([]attendance.Record, 0, len(d.Records)),
		TotalStudents: d.TotalStudents,
		PresentCount:  d.PresentCount,
		AbsentCount:   d.AbsentCount,
		SubmittedBy:   d.SubmittedBy,
		SubmittedName: d.SubmittedName,
		SubmittedAt:   d.SubmittedAt.UTC(),
		LastUpdated:   d.LastUpdated.UTC(),
	}
	for _, r := range d.Records {
		sheet.Records = append(sheet.Records, attendance.Record{
			StudentID:   r.StudentID,
			Name:        r.Name,
			RollNumber:  r.RollNumber,
			AdmissionNo: r.AdmissionNo,
			Class:       r.Class,
			Section:     r.Section,
			Status:      attendance.Status(r.Status),
		})
	}
	return sheet
}

type sheetRepository struct {
	db   *DB
	coll *mongo.Collection
}

var _ attendance.SheetRepository = (*sheetRepository)(nil)

func NewSheetRepository(db *DB) attendance.SheetRepository {
	return &sheetRepository{db: db, coll: db.db.Collection(SheetCollection)}
}

func (repo *sheetRepository) FindSheet(ctx context.Context, id string) (attendance.Sheet, error) {
	ctx, cancel := repo.db.withTimeout(ctx)
	defer cancel()

	var doc sheetDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return attendance.Sheet{}, attendance.ErrSheetNotFound
		}
		return attendance.Sheet{}, errors.Wrap(err, "finding attendance sheet")
	}
	return doc.toSheet(), nil
}

func (repo *sheetRepository) UpsertSheet(ctx context.Context, sheet attendance.Sheet) error {
	ctx, cancel := repo.db.withTimeout(ctx)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": sheet.ID}, newSheetDoc(sheet), opts); err != nil {
		return errors.Wrap(err, "saving attendance sheet")
	}
	return nil
}

func (repo *sheetRepository) DeleteSheet(ctx context.Context, id string) error {
	ctx, cancel := repo.db.withTimeout(ctx)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting attendance sheet")
	}
	if res.DeletedCount == 0 {
		return attendance.ErrSheetNotFound
	}
	return nil
}
