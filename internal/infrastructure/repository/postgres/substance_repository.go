package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hazref/hazsearch/internal/core/domain"
)

type SubstanceRepository struct {
	db *sql.DB
}

func NewSubstanceRepository(db *sql.DB) *SubstanceRepository {
	return &SubstanceRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SubstanceRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/loader startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS substances (
	un_number INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	name_en TEXT NOT NULL DEFAULT '',
	hazard_class TEXT NOT NULL DEFAULT '',
	secondary_hazard TEXT NOT NULL DEFAULT '',
	packing_group TEXT NOT NULL DEFAULT '',
	special_provisions TEXT NOT NULL DEFAULT '',
	limited_quantity TEXT NOT NULL DEFAULT '',
	excepted_quantity TEXT NOT NULL DEFAULT '',
	packing_instruction TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_substances_name ON substances(name);
CREATE INDEX IF NOT EXISTS idx_substances_hazard_class ON substances(hazard_class);
CREATE INDEX IF NOT EXISTS idx_substances_packing_group ON substances(packing_group);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const substanceColumns = `un_number, name, name_en, hazard_class, secondary_hazard, packing_group, special_provisions, limited_quantity, excepted_quantity, packing_instruction, created_at, updated_at`

func (r *SubstanceRepository) LookupByNumber(ctx context.Context, unNumber int) (*domain.SubstanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+substanceColumns+`
FROM substances
WHERE un_number = $1
`, unNumber)

	record, err := scanSubstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSubstanceNotFound, "lookup by un number", fmt.Errorf("un %d", unNumber))
		}
		return nil, fmt.Errorf("scan substance: %w", err)
	}
	return record, nil
}

func (r *SubstanceRepository) SearchByName(ctx context.Context, substring string, limit int) ([]domain.SubstanceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+substanceColumns+`
FROM substances
WHERE name ILIKE '%' || $1 || '%' OR name_en ILIKE '%' || $1 || '%'
ORDER BY un_number
LIMIT $2
`, substring, limit)
	if err != nil {
		return nil, fmt.Errorf("search by name: %w", err)
	}
	defer rows.Close()

	var out []domain.SubstanceRecord
	for rows.Next() {
		record, err := scanSubstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan substance row: %w", err)
		}
		out = append(out, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate substance rows: %w", err)
	}
	return out, nil
}

func (r *SubstanceRepository) Statistics(ctx context.Context) (domain.CatalogStats, error) {
	stats := domain.CatalogStats{
		ByHazardClass:  make(map[string]int),
		ByPackingGroup: make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM substances`).Scan(&stats.TotalSubstances); err != nil {
		return domain.CatalogStats{}, fmt.Errorf("count substances: %w", err)
	}

	if err := r.countBy(ctx, `SELECT hazard_class, COUNT(*) FROM substances GROUP BY hazard_class`, stats.ByHazardClass); err != nil {
		return domain.CatalogStats{}, err
	}
	if err := r.countBy(ctx, `SELECT packing_group, COUNT(*) FROM substances GROUP BY packing_group`, stats.ByPackingGroup); err != nil {
		return domain.CatalogStats{}, err
	}
	return stats, nil
}

func (r *SubstanceRepository) BatchUpsert(ctx context.Context, records []domain.SubstanceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO substances (` + substanceColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (un_number) DO UPDATE SET
	name = EXCLUDED.name,
	name_en = EXCLUDED.name_en,
	hazard_class = EXCLUDED.hazard_class,
	secondary_hazard = EXCLUDED.secondary_hazard,
	packing_group = EXCLUDED.packing_group,
	special_provisions = EXCLUDED.special_provisions,
	limited_quantity = EXCLUDED.limited_quantity,
	excepted_quantity = EXCLUDED.excepted_quantity,
	packing_instruction = EXCLUDED.packing_instruction,
	updated_at = EXCLUDED.updated_at
`

	now := time.Now().UTC()
	count := 0
	for _, record := range records {
		createdAt := record.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		_, err := tx.ExecContext(ctx, query,
			record.UNNumber, record.Name, record.NameEN, record.HazardClass, record.SecondaryHazard,
			record.PackingGroup, record.SpecialProvisions, record.LimitedQuantity, record.ExceptedQuantity,
			record.PackingInstruction, createdAt, now,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert substance un %d: %w", record.UNNumber, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return count, nil
}

func (r *SubstanceRepository) countBy(ctx context.Context, query string, dst map[string]int) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("group count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan group count: %w", err)
		}
		if key == "" {
			key = "unspecified"
		}
		dst[key] = count
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubstance(row rowScanner) (*domain.SubstanceRecord, error) {
	var record domain.SubstanceRecord
	err := row.Scan(
		&record.UNNumber, &record.Name, &record.NameEN, &record.HazardClass, &record.SecondaryHazard,
		&record.PackingGroup, &record.SpecialProvisions, &record.LimitedQuantity, &record.ExceptedQuantity,
		&record.PackingInstruction, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
