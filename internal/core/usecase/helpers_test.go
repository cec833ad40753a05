package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/hazref/hazsearch/internal/core/domain"
)

func testRecord(un int, name, nameEN string) domain.SubstanceRecord {
	return domain.SubstanceRecord{
		UNNumber:    un,
		Name:        name,
		NameEN:      nameEN,
		HazardClass: "3",
	}
}

type fakeRepo struct {
	records   map[int]domain.SubstanceRecord
	lookupErr error
	searchErr error

	lookups  int
	searches int
}

func newFakeRepo(records ...domain.SubstanceRecord) *fakeRepo {
	byUN := make(map[int]domain.SubstanceRecord, len(records))
	for _, r := range records {
		byUN[r.UNNumber] = r
	}
	return &fakeRepo{records: byUN}
}

func (f *fakeRepo) LookupByNumber(_ context.Context, unNumber int) (*domain.SubstanceRecord, error) {
	f.lookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	record, ok := f.records[unNumber]
	if !ok {
		return nil, domain.WrapError(domain.ErrSubstanceNotFound, "lookup by un number", errors.New("no row"))
	}
	return &record, nil
}

func (f *fakeRepo) SearchByName(_ context.Context, substring string, limit int) ([]domain.SubstanceRecord, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	needle := strings.ToLower(substring)
	out := make([]domain.SubstanceRecord, 0, limit)
	for _, record := range f.records {
		if strings.Contains(strings.ToLower(record.Name), needle) ||
			strings.Contains(strings.ToLower(record.NameEN), needle) {
			out = append(out, record)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) Statistics(context.Context) (domain.CatalogStats, error) {
	return domain.CatalogStats{TotalSubstances: len(f.records)}, nil
}

func (f *fakeRepo) BatchUpsert(_ context.Context, records []domain.SubstanceRecord) (int, error) {
	for _, r := range records {
		f.records[r.UNNumber] = r
	}
	return len(records), nil
}

type fakeEmbedder struct {
	err    error
	embeds int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.embeds++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	hits        []domain.SemanticHit
	searchErr   error
	unavailable bool
	searches    int
	upserts     int
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, _ int) ([]domain.SemanticHit, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeIndex) UpsertSubstance(_ context.Context, _ domain.SubstanceRecord, _ []float32) error {
	f.upserts++
	return nil
}

func (f *fakeIndex) Available(context.Context) bool {
	return !f.unavailable
}

func (f *fakeIndex) Count(context.Context) (int, error) {
	return len(f.hits), nil
}
