package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hazref/hazsearch/internal/core/domain"
)

type fakeQueue struct {
	published  []int
	publishErr error
}

func (f *fakeQueue) PublishCatalogUpdated(_ context.Context, unNumber int) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, unNumber)
	return nil
}

func (f *fakeQueue) SubscribeCatalogUpdated(context.Context, func(context.Context, int) error) error {
	return nil
}

func TestStatisticsMergesVectorCounts(t *testing.T) {
	repo := newFakeRepo(testRecord(1090, "丙酮", "ACETONE"), testRecord(1133, "粘合剂", "ADHESIVES"))
	index := &fakeIndex{hits: []domain.SemanticHit{{}, {}}}
	uc := NewCatalogStatsUseCase(repo, index)

	stats, err := uc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalSubstances != 2 {
		t.Fatalf("total = %d", stats.TotalSubstances)
	}
	if !stats.VectorAvailable || stats.VectorPoints != 2 {
		t.Fatalf("vector stats = %+v", stats)
	}
}

func TestStatisticsWithIndexOffline(t *testing.T) {
	repo := newFakeRepo(testRecord(1090, "丙酮", "ACETONE"))
	index := &fakeIndex{unavailable: true}
	uc := NewCatalogStatsUseCase(repo, index)

	stats, err := uc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.VectorAvailable || stats.VectorPoints != 0 {
		t.Fatalf("vector stats = %+v", stats)
	}
}

func TestIndexByNumber(t *testing.T) {
	repo := newFakeRepo(testRecord(1090, "丙酮", "ACETONE"))
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	uc := NewIndexSubstanceUseCase(repo, embedder, index)

	if err := uc.IndexByNumber(context.Background(), 1090); err != nil {
		t.Fatalf("IndexByNumber: %v", err)
	}
	if embedder.embeds != 1 || index.upserts != 1 {
		t.Fatalf("embeds = %d, upserts = %d", embedder.embeds, index.upserts)
	}
}

func TestIndexByNumberUnknownSubstance(t *testing.T) {
	repo := newFakeRepo()
	uc := NewIndexSubstanceUseCase(repo, &fakeEmbedder{}, &fakeIndex{})

	err := uc.IndexByNumber(context.Background(), 9999)
	if !domain.IsKind(err, domain.ErrSubstanceNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestIndexByNumberEmbedFailureSkipsUpsert(t *testing.T) {
	repo := newFakeRepo(testRecord(1090, "丙酮", "ACETONE"))
	index := &fakeIndex{}
	uc := NewIndexSubstanceUseCase(repo, &fakeEmbedder{err: errors.New("model offline")}, index)

	if err := uc.IndexByNumber(context.Background(), 1090); err == nil {
		t.Fatalf("expected embed error")
	}
	if index.upserts != 0 {
		t.Fatalf("upserts = %d", index.upserts)
	}
}

func TestImportUpsertsAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	queue := &fakeQueue{}
	uc := NewImportCatalogUseCase(repo, queue, nil)

	records := []domain.SubstanceRecord{
		testRecord(1090, "丙酮", "ACETONE"),
		testRecord(1133, "粘合剂", "ADHESIVES"),
	}
	n, err := uc.Import(context.Background(), records)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("upserted = %d", n)
	}
	if len(queue.published) != 2 || queue.published[0] != 1090 || queue.published[1] != 1133 {
		t.Fatalf("published = %v", queue.published)
	}
}

func TestImportSurvivesPublishFailures(t *testing.T) {
	repo := newFakeRepo()
	queue := &fakeQueue{publishErr: errors.New("nats down")}
	uc := NewImportCatalogUseCase(repo, queue, nil)

	n, err := uc.Import(context.Background(), []domain.SubstanceRecord{testRecord(1090, "丙酮", "ACETONE")})
	if err != nil {
		t.Fatalf("Import must tolerate publish failures: %v", err)
	}
	if n != 1 {
		t.Fatalf("upserted = %d", n)
	}
	if len(queue.published) != 0 {
		t.Fatalf("published = %v", queue.published)
	}
}

func TestImportEmptyBatchIsNoop(t *testing.T) {
	queue := &fakeQueue{}
	uc := NewImportCatalogUseCase(newFakeRepo(), queue, nil)

	n, err := uc.Import(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("empty import: n=%d err=%v", n, err)
	}
	if len(queue.published) != 0 {
		t.Fatalf("published = %v", queue.published)
	}
}
