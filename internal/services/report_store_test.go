package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/soaringjerry/Jornada/internal/models"
)

func sampleReport(id, name string, day int) models.Report {
	counts := models.NewProfileCounts()
	counts[models.ProfileEspectador] = 2
	counts[models.ProfileInterventor] = 1
	return models.Report{
		ID:            id,
		PlayerName:    name,
		Date:          time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC),
		ProfileCounts: counts,
		Percentages:   Percentages(counts),
		Diagnosis:     Classify(counts),
	}
}

func TestSlotStoreSaveListDelete(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	store := NewSlotReportStore(kv, "", nil)

	list, err := store.ListAll(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("empty store should list nothing: %v %v", list, err)
	}
	if err := store.Save(ctx, sampleReport("r1", "Ana", 1)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, sampleReport("r2", "Bia", 2)); err != nil {
		t.Fatal(err)
	}
	list, _ = store.ListAll(ctx)
	if len(list) != 2 || list[0].ID != "r1" || list[1].ID != "r2" {
		t.Fatalf("expected insertion order, got %+v", list)
	}
	if _, ok := kv.data[ReportsKey]; !ok {
		t.Fatalf("expected reports under %s", ReportsKey)
	}

	removed, err := store.DeleteByID(ctx, "r1")
	if err != nil || !removed {
		t.Fatalf("delete r1: %v %v", removed, err)
	}
	writes := kv.writes
	removed, err = store.DeleteByID(ctx, "missing")
	if err != nil || removed || kv.writes != writes {
		t.Fatalf("deleting an unknown id must not write: removed=%v writes=%d", removed, kv.writes)
	}
	list, _ = store.ListAll(ctx)
	if len(list) != 1 || list[0].ID != "r2" {
		t.Fatalf("unexpected list after delete: %+v", list)
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	if list, _ = store.ListAll(ctx); len(list) != 0 {
		t.Fatalf("expected empty after clear")
	}
}

func TestSlotStoreTolerantDecode(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	store := NewSlotReportStore(kv, "", nil)

	kv.data[ReportsKey] = []byte("not json")
	list, err := store.ListAll(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("corrupt slot should read as empty: %v %v", list, err)
	}
	if err := store.Save(ctx, sampleReport("r1", "Ana", 1)); err != nil {
		t.Fatal(err)
	}
	if list, _ = store.ListAll(ctx); len(list) != 1 {
		t.Fatalf("save over a corrupt slot should start a fresh list")
	}

	kv.data[ReportsKey] = []byte(`[{"id":"a","playerName":"Ana"}, 5, null, "x", {"id": 7, "profileCounts": {"vitima": 1}}, {"id": [}]`)
	list, err = store.ListAll(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("syntactically broken array should read as empty, got %+v", list)
	}

	kv.data[ReportsKey] = []byte(`[{"id":"a","playerName":"Ana"}, 5, null, "x", {"id": 7, "profileCounts": {"vitima": 1}}]`)
	list, err = store.ListAll(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 readable reports, got %+v (%v)", list, err)
	}
	if list[1].ID != "7" || list[1].ProfileCounts[models.ProfileVitima] != 1 {
		t.Fatalf("numeric id not decoded: %+v", list[1])
	}
}

func TestSlotStoreReadError(t *testing.T) {
	kv := newStubKV()
	kv.failGet = errStubDown
	store := NewSlotReportStore(kv, "", nil)
	if _, err := store.ListAll(context.Background()); !errors.Is(err, errStubDown) {
		t.Fatalf("backend errors should surface, got %v", err)
	}
}

func TestSlotStoreConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewSlotReportStore(newStubKV(), "", nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.Save(ctx, sampleReport(fmt.Sprintf("r%d", i), "P", 1)); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if list, _ := store.ListAll(ctx); len(list) != 20 {
		t.Fatalf("expected 20 reports, lost updates: %d", len(list))
	}
}
