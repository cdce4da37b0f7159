package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/content"
	"github.com/soaringjerry/Jornada/internal/game"
	"github.com/soaringjerry/Jornada/internal/models"
)

const maxPlayerName = 60

// SessionRegistry owns live sessions and the results of finished ones.
type SessionRegistry interface {
	PutSession(s *game.Session)
	GetSession(id string) (*game.Session, bool)
	RemoveSession(id string) (*game.Session, bool)
	RemoveIdleSessions(before time.Time) []*game.Session
	PutResult(sessionID string, r models.Report)
	GetResult(sessionID string) (models.Report, bool)
}

type GameCatalog interface {
	Bank(mode game.Mode) *game.Bank
	Type(id int) (content.BullyingType, bool)
}

// GameObserver receives gameplay signals, typically for metrics.
type GameObserver interface {
	SessionStarted(mode game.Mode)
	DieRolled(mode game.Mode, roll int)
	QuestionAnswered(mode game.Mode, outcome string)
	SessionFinished(mode game.Mode)
	ReportSaved(err error)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(game.Mode)           {}
func (nopObserver) DieRolled(game.Mode, int)           {}
func (nopObserver) QuestionAnswered(game.Mode, string) {}
func (nopObserver) SessionFinished(game.Mode)          {}
func (nopObserver) ReportSaved(error)                  {}

type GameService struct {
	registry SessionRegistry
	catalog  GameCatalog
	configs  map[game.Mode]game.Config
	sched    *game.Scheduler
	reports  *ReportService
	observer GameObserver
	log      *zap.Logger
	idGen    func() string
	saveTTL  time.Duration
}

type GameServiceOptions struct {
	Profile  game.Config
	Quiz     game.Config
	Observer GameObserver
	Logger   *zap.Logger
}

func NewGameService(registry SessionRegistry, catalog GameCatalog, reports *ReportService, sched *game.Scheduler, opts GameServiceOptions) *GameService {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Profile.Mode == "" {
		opts.Profile = game.ProfileConfig()
	}
	if opts.Quiz.Mode == "" {
		opts.Quiz = game.QuizConfig()
	}
	return &GameService{
		registry: registry,
		catalog:  catalog,
		configs:  map[game.Mode]game.Config{game.ModeProfile: opts.Profile, game.ModeQuiz: opts.Quiz},
		sched:    sched,
		reports:  reports,
		observer: opts.Observer,
		log:      opts.Logger,
		idGen:    uuid.NewString,
		saveTTL:  10 * time.Second,
	}
}

// Start creates a session at position 0 on a freshly shuffled board.
func (s *GameService) Start(playerName, mode string) (*game.View, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, NewInvalidError("player_name required")
	}
	if utf8.RuneCountInString(name) > maxPlayerName {
		return nil, NewInvalidError("player_name too long")
	}
	m := game.Mode(strings.ToLower(strings.TrimSpace(mode)))
	if m == "" {
		m = game.ModeProfile
	}
	if !m.Valid() {
		return nil, NewInvalidError("mode must be profile or quiz")
	}
	bank := s.catalog.Bank(m)
	if bank == nil || bank.Len() == 0 {
		s.log.Warn("question bank empty, session will show no questions", zap.String("mode", string(m)))
	}
	opts := []game.SessionOption{game.WithFinishHook(s.finishHook)}
	if s.sched != nil {
		opts = append(opts, game.WithScheduler(s.sched))
	}
	sess := game.NewSession(s.idGen(), name, s.configs[m], bank, opts...)
	s.registry.PutSession(sess)
	s.observer.SessionStarted(m)
	v := sess.View()
	return &v, nil
}

func (s *GameService) session(id string) (*game.Session, error) {
	sess, ok := s.registry.GetSession(id)
	if !ok {
		return nil, NewNotFoundError("session not found")
	}
	return sess, nil
}

func (s *GameService) View(id string) (*game.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	v := sess.View()
	return &v, nil
}

func (s *GameService) Roll(id string) (*game.RollResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	res, err := sess.Roll()
	if err != nil {
		return nil, gameError(err)
	}
	s.observer.DieRolled(sess.Mode(), res.Roll)
	return &res, nil
}

func (s *GameService) Answer(id, optionID string) (*game.AnswerResult, error) {
	if strings.TrimSpace(optionID) == "" {
		return nil, NewInvalidError("option_id required")
	}
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	res, err := sess.Answer(optionID)
	if err != nil {
		return nil, gameError(err)
	}
	outcome := string(res.Profile)
	if sess.Mode() == game.ModeQuiz {
		outcome = "wrong"
		if res.Correct {
			outcome = "correct"
		}
	}
	s.observer.QuestionAnswered(sess.Mode(), outcome)
	return &res, nil
}

// Reset replays with the same player name on a new board.
func (s *GameService) Reset(id string) (*game.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.Reset()
	v := sess.View()
	return &v, nil
}

func (s *GameService) CompleteTopic(id string, typeID int) (bool, error) {
	sess, err := s.session(id)
	if err != nil {
		return false, err
	}
	if _, ok := s.catalog.Type(typeID); !ok {
		return false, NewNotFoundError("bullying type not found")
	}
	return sess.CompleteTopic(typeID), nil
}

// Abandon drops the session and cancels its pending finish step.
func (s *GameService) Abandon(id string) error {
	sess, ok := s.registry.RemoveSession(id)
	if !ok {
		return NewNotFoundError("session not found")
	}
	sess.Close()
	return nil
}

// SweepIdle closes sessions untouched since before.
func (s *GameService) SweepIdle(before time.Time) int {
	removed := s.registry.RemoveIdleSessions(before)
	for _, sess := range removed {
		sess.Close()
	}
	if len(removed) > 0 {
		s.log.Info("swept idle sessions", zap.Int("count", len(removed)))
	}
	return len(removed)
}

// SessionResult is what the end screen shows.
type SessionResult struct {
	SessionID   string         `json:"session_id"`
	Mode        game.Mode      `json:"mode"`
	Report      *models.Report `json:"report,omitempty"`
	Performance *Performance   `json:"performance,omitempty"`
}

func (s *GameService) Result(id, locale string) (*SessionResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if !sess.Finished() {
		return nil, NewConflictError("session not finished")
	}
	snap := sess.Snapshot()
	out := &SessionResult{SessionID: id, Mode: snap.Mode}
	switch snap.Mode {
	case game.ModeQuiz:
		p := EvaluatePerformance(snap.Player.Score, snap.Player.Answers, locale)
		out.Performance = &p
	default:
		r, ok := s.registry.GetResult(id)
		if !ok {
			return nil, NewConflictError("report not ready")
		}
		r.Diagnosis = ClassifyLocale(r.ProfileCounts, locale)
		out.Report = &r
	}
	return out, nil
}

func (s *GameService) finishHook(snap game.Snapshot) {
	s.observer.SessionFinished(snap.Mode)
	if snap.Mode != game.ModeProfile {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTTL)
	defer cancel()
	r, err := s.reports.CreateFromSession(ctx, snap.SessionID, snap.Player.Name, snap.Counts)
	s.observer.ReportSaved(err)
	if err != nil {
		// the player still sees a diagnosis; only persistence failed
		s.log.Error("save report failed", zap.String("session", snap.SessionID), zap.Error(err))
		built := s.reports.Build(snap.Player.Name, snap.Counts)
		r = &built
	}
	s.registry.PutResult(snap.SessionID, *r)
}

// Close stops pending finish steps and waits for running ones.
func (s *GameService) Close() {
	if s.sched != nil {
		s.sched.Stop()
	}
}

func gameError(err error) error {
	switch {
	case errors.Is(err, game.ErrQuestionPending), errors.Is(err, game.ErrSessionFinished), errors.Is(err, game.ErrNoQuestion):
		return NewConflictError(err.Error())
	case errors.Is(err, game.ErrUnknownOption):
		return NewInvalidError(err.Error())
	}
	return err
}
