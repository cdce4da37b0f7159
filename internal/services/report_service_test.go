package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soaringjerry/Jornada/internal/models"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func newTestReportService(kv KeyValue, pub EventPublisher) *ReportService {
	svc := NewReportService(NewSlotReportStore(kv, "", nil), pub, nil)
	n := 0
	svc.idGen = func() string {
		n++
		return "id" + string(rune('0'+n))
	}
	day := 0
	svc.now = func() time.Time {
		day++
		return time.Date(2025, 4, day, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestReportServiceCreateListDelete(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestReportService(newStubKV(), pub)

	counts := models.NewProfileCounts()
	counts[models.ProfileEspectador] = 2
	counts[models.ProfileInterventor] = 1
	r, err := svc.CreateFromSession(ctx, "s1", "  Ana ", counts)
	if err != nil {
		t.Fatalf("CreateFromSession: %v", err)
	}
	if r.PlayerName != "Ana" || r.Percentages[models.ProfileEspectador] != "66.67" || r.Diagnosis.DominantTag != models.ProfileEspectador {
		t.Fatalf("unexpected report: %+v", r)
	}
	if len(pub.events) != 1 || pub.events[0].Type != EventReportSaved || pub.events[0].SessionID != "s1" {
		t.Fatalf("expected a saved event, got %+v", pub.events)
	}
	if _, err := svc.CreateFromSession(ctx, "s2", "Bia", models.NewProfileCounts()); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: %v %v", list, err)
	}
	if list[0].PlayerName != "Bia" {
		t.Fatalf("expected newest first, got %s", list[0].PlayerName)
	}

	if _, err := svc.Get(ctx, "nope"); !isCode(err, ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, r.ID); !isCode(err, ErrorNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if list, _ = svc.List(ctx); len(list) != 0 {
		t.Fatalf("expected empty list after clear")
	}
}

func TestReportServicePublishFailureIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestReportService(newStubKV(), pub)
	if _, err := svc.CreateFromSession(context.Background(), "s", "Ana", models.NewProfileCounts()); err != nil {
		t.Fatalf("publish failure must not fail the save: %v", err)
	}
	if _, err := svc.CreateFromSession(context.Background(), "s", " ", models.NewProfileCounts()); !isCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid error for blank name, got %v", err)
	}
}

func TestReportServiceImportBrowserDump(t *testing.T) {
	ctx := context.Background()
	svc := newTestReportService(newStubKV(), nil)
	dump := `{"bullygame_reports": "[{\"id\":1712,\"playerName\":\"Ana\",\"date\":\"2024-05-01T10:00:00.000Z\",\"profileCounts\":{\"agressor\":0,\"vitima\":3,\"vitima-agressora\":0,\"vitima-agressora-ciclica\":0,\"espectador\":1,\"interventor\":0},\"percentages\":{\"vitima\":\"75.00\",\"espectador\":\"25.00\"},\"diagnosis\":{\"perfilDominante\":\"Vítima\",\"analise\":\"texto\",\"dicas\":[\"a\"],\"recomendacoes\":[\"b\"]}}, 42, {\"playerName\":\"Bia\",\"profileCounts\":{\"interventor\":2}}]", "admin_authenticated": "true"}`
	res, err := svc.Import(ctx, []byte(dump))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected import result: %+v", res)
	}
	r, err := svc.Get(ctx, "1712")
	if err != nil {
		t.Fatalf("legacy numeric id not kept: %v", err)
	}
	if r.Diagnosis.DominantProfile != "Vítima" || r.Diagnosis.Tips[0] != "a" {
		t.Fatalf("legacy diagnosis not decoded: %+v", r.Diagnosis)
	}
	list, _ := svc.List(ctx)
	var bia *models.Report
	for i := range list {
		if list[i].PlayerName == "Bia" {
			bia = &list[i]
		}
	}
	if bia == nil || bia.ID == "" || bia.Diagnosis.DominantTag != models.ProfileInterventor || bia.Percentages[models.ProfileInterventor] != "100.00" {
		t.Fatalf("sparse report not completed: %+v", bia)
	}

	if _, err := svc.Import(ctx, []byte(`{"other": 1}`)); !isCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for dump without reports key, got %v", err)
	}
	if _, err := svc.Import(ctx, []byte(`"nope"`)); !isCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for non-array dump, got %v", err)
	}
}

func isCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}
