package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/soaringjerry/Jornada/internal/content"
	"github.com/soaringjerry/Jornada/internal/game"
	"github.com/soaringjerry/Jornada/internal/models"
)

type stubRegistry struct {
	mu       sync.Mutex
	sessions map[string]*game.Session
	results  map[string]models.Report
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{sessions: map[string]*game.Session{}, results: map[string]models.Report{}}
}

func (r *stubRegistry) PutSession(s *game.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

func (r *stubRegistry) GetSession(id string) (*game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *stubRegistry) RemoveSession(id string) (*game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	return s, ok
}

func (r *stubRegistry) RemoveIdleSessions(before time.Time) []*game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*game.Session
	for id, s := range r.sessions {
		if s.UpdatedAt().Before(before) {
			out = append(out, s)
			delete(r.sessions, id)
		}
	}
	return out
}

func (r *stubRegistry) PutResult(id string, rep models.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[id] = rep
}

func (r *stubRegistry) GetResult(id string) (models.Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.results[id]
	return rep, ok
}

type countingObserver struct {
	nopObserver
	started, finished int
	saveErrs          []error
}

func (o *countingObserver) SessionStarted(game.Mode)  { o.started++ }
func (o *countingObserver) SessionFinished(game.Mode) { o.finished++ }
func (o *countingObserver) ReportSaved(err error)     { o.saveErrs = append(o.saveErrs, err) }

func newTestGameService(t *testing.T, kv KeyValue, obs GameObserver) (*GameService, *stubRegistry) {
	t.Helper()
	catalog, err := content.Load()
	if err != nil {
		t.Fatal(err)
	}
	profile := game.ProfileConfig()
	profile.FinishDelay = 0
	quiz := game.QuizConfig()
	quiz.FinishDelay = 0
	reg := newStubRegistry()
	reports := NewReportService(NewSlotReportStore(kv, "", nil), nil, nil)
	// no scheduler: the finish step runs inline
	svc := NewGameService(reg, catalog, reports, nil, GameServiceOptions{Profile: profile, Quiz: quiz, Observer: obs})
	return svc, reg
}

func playToEnd(t *testing.T, svc *GameService, id string) {
	t.Helper()
	for i := 0; i < 200; i++ {
		res, err := svc.Roll(id)
		if err != nil {
			t.Fatalf("Roll: %v", err)
		}
		if res.Question != nil {
			if _, err := svc.Answer(id, res.Question.Options[0].ID); err != nil {
				t.Fatalf("Answer: %v", err)
			}
		}
		if res.Finishing {
			return
		}
	}
	t.Fatalf("session never finished")
}

func TestGameServiceProfileFlow(t *testing.T) {
	kv := newStubKV()
	obs := &countingObserver{}
	svc, _ := newTestGameService(t, kv, obs)

	if _, err := svc.Start(" ", "profile"); !isCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for blank name, got %v", err)
	}
	if _, err := svc.Start("Ana", "chess"); !isCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
	v, err := svc.Start("Ana", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if v.Mode != game.ModeProfile || len(v.Board) != 50 || v.Player.Position != 0 {
		t.Fatalf("unexpected initial view: %+v", v)
	}
	if _, err := svc.Result(v.ID, "pt"); !isCode(err, ErrorConflict) {
		t.Fatalf("result before finish should conflict, got %v", err)
	}
	if _, err := svc.Answer(v.ID, "a"); !isCode(err, ErrorConflict) {
		t.Fatalf("answer with no question should conflict, got %v", err)
	}

	playToEnd(t, svc, v.ID)
	if _, err := svc.Roll(v.ID); !isCode(err, ErrorConflict) {
		t.Fatalf("roll after finish should conflict, got %v", err)
	}

	res, err := svc.Result(v.ID, "en")
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Report == nil || res.Report.PlayerName != "Ana" || res.Performance != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	stored, _ := NewSlotReportStore(kv, "", nil).ListAll(context.Background())
	if len(stored) != 1 || stored[0].ID != res.Report.ID {
		t.Fatalf("expected the report to be saved once, got %d", len(stored))
	}
	if stored[0].Diagnosis.Analysis == res.Report.Diagnosis.Analysis {
		t.Fatalf("result should be localized while the stored report keeps the default locale")
	}
	if obs.started != 1 || obs.finished != 1 || len(obs.saveErrs) != 1 || obs.saveErrs[0] != nil {
		t.Fatalf("unexpected observer counts: %+v", obs)
	}
}

func TestGameServiceQuizFlow(t *testing.T) {
	kv := newStubKV()
	svc, _ := newTestGameService(t, kv, nil)
	v, err := svc.Start("Bia", "quiz")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Board) != 25 {
		t.Fatalf("quiz board should have 25 cells, got %d", len(v.Board))
	}
	playToEnd(t, svc, v.ID)
	res, err := svc.Result(v.ID, "pt")
	if err != nil {
		t.Fatal(err)
	}
	if res.Performance == nil || res.Report != nil {
		t.Fatalf("quiz should produce a performance only: %+v", res)
	}
	if res.Performance.Score != res.Performance.Correct*10 {
		t.Fatalf("score should be 10 per correct answer: %+v", res.Performance)
	}
	if len(kv.data) != 0 {
		t.Fatalf("quiz mode must not save reports")
	}
}

func TestGameServiceTopicsResetAbandon(t *testing.T) {
	svc, reg := newTestGameService(t, newStubKV(), nil)
	v, err := svc.Start("Caio", "profile")
	if err != nil {
		t.Fatal(err)
	}
	if added, err := svc.CompleteTopic(v.ID, 1); err != nil || !added {
		t.Fatalf("CompleteTopic: %v %v", added, err)
	}
	if _, err := svc.CompleteTopic(v.ID, 999); !isCode(err, ErrorNotFound) {
		t.Fatalf("expected not found for unknown topic, got %v", err)
	}
	if _, err := svc.Roll(v.ID); err != nil {
		t.Fatal(err)
	}
	reset, err := svc.Reset(v.ID)
	if err != nil || reset.Player.Position != 0 || reset.Player.Name != "Caio" {
		t.Fatalf("unexpected reset view: %+v %v", reset, err)
	}
	if err := svc.Abandon(v.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.View(v.ID); !isCode(err, ErrorNotFound) {
		t.Fatalf("expected not found after abandon, got %v", err)
	}
	if err := svc.Abandon(v.ID); !isCode(err, ErrorNotFound) {
		t.Fatalf("second abandon should be not found")
	}

	if _, err := svc.Start("Duda", "quiz"); err != nil {
		t.Fatal(err)
	}
	if n := svc.SweepIdle(time.Now().Add(time.Minute)); n != 1 || len(reg.sessions) != 0 {
		t.Fatalf("expected the idle session to be swept, got %d", n)
	}
}

func TestGameServiceSaveFailureStillShowsResult(t *testing.T) {
	kv := &failingUpdateKV{stubKV: newStubKV()}
	obs := &countingObserver{}
	svc, _ := newTestGameService(t, kv, obs)
	v, err := svc.Start("Eva", "profile")
	if err != nil {
		t.Fatal(err)
	}
	playToEnd(t, svc, v.ID)
	res, err := svc.Result(v.ID, "pt")
	if err != nil || res.Report == nil {
		t.Fatalf("player should still get a diagnosis: %+v %v", res, err)
	}
	if len(obs.saveErrs) != 1 || obs.saveErrs[0] == nil {
		t.Fatalf("expected the save failure to be observed")
	}
}

type failingUpdateKV struct{ *stubKV }

func (f *failingUpdateKV) Update(context.Context, string, func([]byte, bool) ([]byte, error)) error {
	return errStubDown
}
