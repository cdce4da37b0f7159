package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/models"
)

// ReportsKey is the single slot that holds every saved report.
const ReportsKey = "bullygame_reports"

// KeyValue is a durable string slot store. Update must be an atomic
// read-modify-write: fn sees the current value (ok false when absent) and
// returns the value to write. A nil result leaves the slot untouched.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Update(ctx context.Context, key string, fn func(cur []byte, ok bool) ([]byte, error)) error
	Delete(ctx context.Context, key string) error
}

type ReportStore interface {
	Save(ctx context.Context, r models.Report) error
	SaveAll(ctx context.Context, rs []models.Report) (int, error)
	ListAll(ctx context.Context) ([]models.Report, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	ClearAll(ctx context.Context) error
}

// SlotReportStore keeps all reports as one JSON array under a single key.
type SlotReportStore struct {
	kv  KeyValue
	key string
	log *zap.Logger
}

func NewSlotReportStore(kv KeyValue, key string, log *zap.Logger) *SlotReportStore {
	if key == "" {
		key = ReportsKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotReportStore{kv: kv, key: key, log: log}
}

func (s *SlotReportStore) Key() string { return s.key }

// ListAll returns every readable report in insertion order. An absent or
// unparsable slot yields an empty list.
func (s *SlotReportStore) ListAll(ctx context.Context) ([]models.Report, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	if !ok {
		return []models.Report{}, nil
	}
	return s.decode(raw), nil
}

func (s *SlotReportStore) Save(ctx context.Context, r models.Report) error {
	_, err := s.SaveAll(ctx, []models.Report{r})
	return err
}

// SaveAll appends rs in one write and returns how many were stored.
func (s *SlotReportStore) SaveAll(ctx context.Context, rs []models.Report) (int, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	err := s.kv.Update(ctx, s.key, func(cur []byte, ok bool) ([]byte, error) {
		list := []models.Report{}
		if ok {
			list = s.decode(cur)
		}
		list = append(list, rs...)
		return json.Marshal(list)
	})
	if err != nil {
		return 0, fmt.Errorf("save reports: %w", err)
	}
	return len(rs), nil
}

// DeleteByID removes the report with id. It reports whether one was removed;
// an unknown id leaves the slot untouched.
func (s *SlotReportStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.kv.Update(ctx, s.key, func(cur []byte, ok bool) ([]byte, error) {
		removed = false
		if !ok {
			return nil, nil
		}
		list := s.decode(cur)
		kept := make([]models.Report, 0, len(list))
		for _, r := range list {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		if !removed {
			return nil, nil
		}
		return json.Marshal(kept)
	})
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return removed, nil
}

func (s *SlotReportStore) ClearAll(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}
	return nil
}

func (s *SlotReportStore) decode(raw []byte) []models.Report {
	out, skipped, err := DecodeReports(raw)
	if err != nil {
		s.log.Warn("report slot unreadable, treating as empty", zap.String("key", s.key), zap.Error(err))
		return []models.Report{}
	}
	if skipped > 0 {
		s.log.Warn("skipped malformed reports", zap.String("key", s.key), zap.Int("skipped", skipped))
	}
	return out
}

// DecodeReports parses a JSON array of reports, skipping elements that are
// not report objects. err is set only when raw is not an array at all.
func DecodeReports(raw []byte) (reports []models.Report, skipped int, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []models.Report{}, 0, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 0, err
	}
	reports = make([]models.Report, 0, len(elems))
	for _, elem := range elems {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			skipped++
			continue
		}
		var r models.Report
		if err := json.Unmarshal(trimmed, &r); err != nil {
			skipped++
			continue
		}
		reports = append(reports, r)
	}
	return reports, skipped, nil
}
