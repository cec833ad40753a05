package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hazref/hazsearch/internal/core/domain"
)

func substanceRows(records ...domain.SubstanceRecord) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"un_number", "name", "name_en", "hazard_class", "secondary_hazard",
		"packing_group", "special_provisions", "limited_quantity", "excepted_quantity",
		"packing_instruction", "created_at", "updated_at",
	})
	for _, r := range records {
		rows.AddRow(
			r.UNNumber, r.Name, r.NameEN, r.HazardClass, r.SecondaryHazard,
			r.PackingGroup, r.SpecialProvisions, r.LimitedQuantity, r.ExceptedQuantity,
			r.PackingInstruction, r.CreatedAt, r.UpdatedAt,
		)
	}
	return rows
}

func TestLookupByNumberFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)SELECT .+FROM substances.+WHERE un_number = \$1`).
		WithArgs(1133).
		WillReturnRows(substanceRows(domain.SubstanceRecord{
			UNNumber:    1133,
			Name:        "粘合剂",
			NameEN:      "ADHESIVES",
			HazardClass: "3",
			CreatedAt:   now,
			UpdatedAt:   now,
		}))

	repo := NewSubstanceRepository(db)
	record, err := repo.LookupByNumber(context.Background(), 1133)
	if err != nil {
		t.Fatalf("LookupByNumber: %v", err)
	}
	if record.UNNumber != 1133 || record.NameEN != "ADHESIVES" {
		t.Fatalf("record = %+v", record)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLookupByNumberNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+FROM substances.+WHERE un_number = \$1`).
		WithArgs(9999).
		WillReturnRows(substanceRows())

	repo := NewSubstanceRepository(db)
	_, err = repo.LookupByNumber(context.Background(), 9999)
	if !domain.IsKind(err, domain.ErrSubstanceNotFound) {
		t.Fatalf("expected ErrSubstanceNotFound, got %v", err)
	}
}

func TestSearchByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)SELECT .+FROM substances.+WHERE name ILIKE .+ OR name_en ILIKE .+ORDER BY un_number.+LIMIT \$2`).
		WithArgs("acetone", 50).
		WillReturnRows(substanceRows(domain.SubstanceRecord{
			UNNumber: 1090, Name: "丙酮", NameEN: "ACETONE", HazardClass: "3",
			CreatedAt: now, UpdatedAt: now,
		}))

	repo := NewSubstanceRepository(db)
	records, err := repo.SearchByName(context.Background(), "acetone", 0)
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(records) != 1 || records[0].UNNumber != 1090 {
		t.Fatalf("records = %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStatistics(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM substances`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT hazard_class, COUNT\(\*\) FROM substances GROUP BY hazard_class`).
		WillReturnRows(sqlmock.NewRows([]string{"hazard_class", "count"}).AddRow("3", 1).AddRow("", 1))
	mock.ExpectQuery(`SELECT packing_group, COUNT\(\*\) FROM substances GROUP BY packing_group`).
		WillReturnRows(sqlmock.NewRows([]string{"packing_group", "count"}).AddRow("II", 2))

	repo := NewSubstanceRepository(db)
	stats, err := repo.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalSubstances != 2 {
		t.Fatalf("total = %d", stats.TotalSubstances)
	}
	if stats.ByHazardClass["unspecified"] != 1 {
		t.Fatalf("blank hazard class must count as unspecified: %v", stats.ByHazardClass)
	}
	if stats.ByPackingGroup["II"] != 2 {
		t.Fatalf("packing groups = %v", stats.ByPackingGroup)
	}
}

func TestBatchUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO substances .+ON CONFLICT \(un_number\) DO UPDATE SET`).
		WithArgs(1090, "丙酮", "ACETONE", "3", "", "II", "", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT INTO substances .+ON CONFLICT \(un_number\) DO UPDATE SET`).
		WithArgs(1133, "粘合剂", "ADHESIVES", "3", "", "III", "640", "5 L", "", "P001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewSubstanceRepository(db)
	count, err := repo.BatchUpsert(context.Background(), []domain.SubstanceRecord{
		{UNNumber: 1090, Name: "丙酮", NameEN: "ACETONE", HazardClass: "3", PackingGroup: "II"},
		{UNNumber: 1133, Name: "粘合剂", NameEN: "ADHESIVES", HazardClass: "3", PackingGroup: "III", SpecialProvisions: "640", LimitedQuantity: "5 L", PackingInstruction: "P001"},
	})
	if err != nil {
		t.Fatalf("BatchUpsert: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchUpsertEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewSubstanceRepository(db)
	count, err := repo.BatchUpsert(context.Background(), nil)
	if err != nil || count != 0 {
		t.Fatalf("empty upsert: count=%d err=%v", count, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
