package services

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/models"
)

// Event is a domain notification. Publishing is best effort.
type Event struct {
	Type       string            `json:"type"`
	ReportID   string            `json:"report_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	PlayerName string            `json:"player_name,omitempty"`
	Dominant   models.ProfileTag `json:"dominant,omitempty"`
	Count      int               `json:"count,omitempty"`
	At         time.Time         `json:"at"`
}

const (
	EventReportSaved     = "report.saved"
	EventReportDeleted   = "report.deleted"
	EventReportsCleared  = "reports.cleared"
	EventReportsImported = "reports.imported"
)

type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

type ReportService struct {
	store  ReportStore
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
	idGen  func() string
}

func NewReportService(store ReportStore, events EventPublisher, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{
		store:  store,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		idGen:  uuid.NewString,
	}
}

// Build derives a report from final counts without saving it.
func (s *ReportService) Build(playerName string, counts models.ProfileCounts) models.Report {
	counts = counts.Clone()
	return models.Report{
		ID:            s.idGen(),
		PlayerName:    strings.TrimSpace(playerName),
		Date:          s.now(),
		ProfileCounts: counts,
		Percentages:   Percentages(counts),
		Diagnosis:     Classify(counts),
	}
}

// CreateFromSession classifies the counts of a finished session and saves the report.
func (s *ReportService) CreateFromSession(ctx context.Context, sessionID, playerName string, counts models.ProfileCounts) (*models.Report, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, NewInvalidError("player name required")
	}
	r := s.Build(playerName, counts)
	if err := s.store.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, Event{Type: EventReportSaved, ReportID: r.ID, SessionID: sessionID, PlayerName: r.PlayerName, Dominant: r.Diagnosis.DominantTag, At: r.Date})
	return &r, nil
}

// List returns every report, newest first.
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewInvalidError("report id required")
	}
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, NewNotFoundError("report not found")
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewInvalidError("report id required")
	}
	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return NewNotFoundError("report not found")
	}
	s.publish(ctx, Event{Type: EventReportDeleted, ReportID: id, At: s.now()})
	return nil
}

func (s *ReportService) Clear(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	s.publish(ctx, Event{Type: EventReportsCleared, At: s.now()})
	return nil
}

// ImportResult counts what Import kept and dropped.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import appends reports from a JSON dump. It accepts a plain report array, an
// exported all-reports file, or a browser storage dump object whose
// bullygame_reports entry holds the array as a string. Missing ids are
// generated and missing diagnoses are recomputed from the counts.
func (s *ReportService) Import(ctx context.Context, raw []byte) (*ImportResult, error) {
	payload, err := unwrapDump(raw)
	if err != nil {
		return nil, err
	}
	reports, skipped, err := DecodeReports(payload)
	if err != nil {
		return nil, NewInvalidError("dump is not a report array")
	}
	for i := range reports {
		r := &reports[i]
		if r.ID == "" {
			r.ID = s.idGen()
		}
		if r.Date.IsZero() {
			r.Date = s.now()
		}
		r.ProfileCounts = r.ProfileCounts.Clone()
		if len(r.Percentages) == 0 {
			r.Percentages = Percentages(r.ProfileCounts)
		}
		if r.Diagnosis.DominantProfile == "" {
			r.Diagnosis = Classify(r.ProfileCounts)
		}
	}
	n, err := s.store.SaveAll(ctx, reports)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.publish(ctx, Event{Type: EventReportsImported, Count: n, At: s.now()})
	}
	return &ImportResult{Imported: n, Skipped: skipped}, nil
}

func unwrapDump(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return raw, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, NewInvalidError("dump is not valid JSON")
	}
	entry, ok := obj[ReportsKey]
	if !ok {
		return nil, NewInvalidError("dump has no " + ReportsKey + " entry")
	}
	var inner string
	if err := json.Unmarshal(entry, &inner); err == nil {
		return []byte(inner), nil
	}
	return entry, nil
}

func (s *ReportService) publish(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("type", ev.Type), zap.Error(err))
	}
}
