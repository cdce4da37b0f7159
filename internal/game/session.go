package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Jornada/internal/models"
)

// Mode selects the board variant.
type Mode string

const (
	// ModeProfile is the full board: answers feed the profile classifier and a
	// report is written when the player reaches the last cell.
	ModeProfile Mode = "profile"
	// ModeQuiz is the short variant: a small pool of right/wrong questions and a score.
	ModeQuiz Mode = "quiz"
)

func (m Mode) Valid() bool { return m == ModeProfile || m == ModeQuiz }

// Phase is the turn state. Rolling happens inside Roll under the session lock,
// so callers only ever observe the states below.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseMoved     Phase = "moved"
	PhaseFinishing Phase = "finishing"
	PhaseFinished  Phase = "finished"
)

var (
	ErrQuestionPending = errors.New("answer the current question before rolling")
	ErrSessionFinished = errors.New("session already finished")
	ErrNoQuestion      = errors.New("no question is being shown")
	ErrUnknownOption   = errors.New("unknown option")
)

// Config fixes the board and rules for one session.
type Config struct {
	Mode        Mode
	TotalCells  int
	Layout      Layout
	Categories  []CategoryTag
	DieFaces    int
	ScoreBonus  int
	PoolSize    int // 0 keeps the whole bank
	FinishDelay time.Duration
}

// ProfileConfig is the 50-cell, six-sided-die board.
func ProfileConfig() Config {
	return Config{
		Mode:        ModeProfile,
		TotalCells:  50,
		Layout:      DefaultLayout,
		Categories:  Categories,
		DieFaces:    6,
		FinishDelay: 1500 * time.Millisecond,
	}
}

// QuizConfig is the short board: 25 cells, a three-sided die and five questions.
func QuizConfig() Config {
	return Config{
		Mode:        ModeQuiz,
		TotalCells:  25,
		Layout:      DefaultLayout.WithGrid(5, 5),
		Categories:  Categories,
		DieFaces:    3,
		ScoreBonus:  10,
		PoolSize:    5,
		FinishDelay: 1500 * time.Millisecond,
	}
}

// Snapshot is an immutable copy of a session handed to the finish hook.
type Snapshot struct {
	SessionID  string
	Mode       Mode
	Player     models.Player
	Counts     models.ProfileCounts
	TotalCells int
	StartedAt  time.Time
	FinishedAt time.Time
}

// FinishFunc runs once per session, after the finish delay, outside the session lock.
type FinishFunc func(Snapshot)

// SessionOption customises NewSession.
type SessionOption func(*Session)

func WithRand(r Rand) SessionOption { return func(s *Session) { s.rng = r } }

// WithScheduler delays the finish step on sched. Without one the step runs inline.
func WithScheduler(sched *Scheduler) SessionOption { return func(s *Session) { s.sched = sched } }

func WithFinishHook(fn FinishFunc) SessionOption { return func(s *Session) { s.onFinish = fn } }

func WithClock(now func() time.Time) SessionOption { return func(s *Session) { s.now = now } }

// Session is one play-through. It is the single owner of its player, board and
// counters; every mutation goes through its methods.
type Session struct {
	mu       sync.Mutex
	id       string
	cfg      Config
	bank     *Bank
	rng      Rand
	sched    *Scheduler
	onFinish FinishFunc
	now      func() time.Time

	player     models.Player
	board      []BoardCell
	pool       []Question
	used       map[int]bool
	counts     models.ProfileCounts
	current    *Question
	phase      Phase
	lastRoll   int
	topics     []int
	generation uint64
	createdAt  time.Time
	updatedAt  time.Time
	finishedAt time.Time
}

// NewSession builds a fresh session at position 0.
func NewSession(id, playerName string, cfg Config, bank *Bank, opts ...SessionOption) *Session {
	s := &Session{
		id:   id,
		cfg:  cfg,
		bank: bank,
		rng:  DefaultRand,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.player = models.Player{ID: uuid.NewString(), Name: playerName}
	s.createdAt = s.now()
	s.resetLocked()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Mode() Mode { return s.cfg.Mode }

func (s *Session) resetLocked() {
	s.generation++
	s.board = GenerateBoard(s.rng, s.cfg.TotalCells, s.cfg.Categories, s.cfg.Layout)
	if s.bank != nil {
		if s.cfg.PoolSize > 0 {
			s.pool = s.bank.Sample(s.rng, s.cfg.PoolSize)
		} else {
			s.pool = s.bank.Questions
		}
	}
	s.used = map[int]bool{}
	s.counts = models.NewProfileCounts()
	s.current = nil
	s.phase = PhaseIdle
	s.lastRoll = 0
	s.player.Position = 0
	s.player.Score = 0
	s.player.Answers = nil
	s.finishedAt = time.Time{}
	s.updatedAt = s.now()
}

// RollResult describes one turn.
type RollResult struct {
	Roll      int           `json:"roll"`
	From      int           `json:"from"`
	To        int           `json:"to"`
	Cell      *BoardCell    `json:"cell,omitempty"`
	Question  *QuestionView `json:"question,omitempty"`
	Finishing bool          `json:"finishing"`
}

// Roll throws the die, moves the player and, on landing inside the board,
// shows a question. Reaching the last cell starts the finish countdown.
func (s *Session) Roll() (RollResult, error) {
	s.mu.Lock()
	if s.phase == PhaseFinishing || s.phase == PhaseFinished {
		s.mu.Unlock()
		return RollResult{}, ErrSessionFinished
	}
	if s.current != nil {
		s.mu.Unlock()
		return RollResult{}, ErrQuestionPending
	}

	roll := RollDie(s.rng, s.cfg.DieFaces)
	from := s.player.Position
	to := Advance(from, roll, s.cfg.TotalCells)
	s.player.Position = to
	s.lastRoll = roll
	s.phase = PhaseMoved
	s.updatedAt = s.now()

	res := RollResult{Roll: roll, From: from, To: to}
	if to >= 1 && to <= len(s.board) {
		cell := s.board[to-1]
		res.Cell = &cell
	}
	if to != from && to > 0 && to < s.cfg.TotalCells {
		if q, ok := DrawQuestion(s.rng, s.pool, s.used); ok {
			s.used[q.ID] = true
			s.current = &q
			v := q.View()
			res.Question = &v
		}
	}

	var gen uint64
	if to >= s.cfg.TotalCells {
		s.phase = PhaseFinishing
		res.Finishing = true
		gen = s.generation
	}
	s.mu.Unlock()

	if res.Finishing {
		s.scheduleFinish(gen)
	}
	return res, nil
}

func (s *Session) scheduleFinish(gen uint64) {
	step := func() { s.finish(gen) }
	if s.sched == nil {
		step()
		return
	}
	s.sched.After(s.id, s.cfg.FinishDelay, step)
}

func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	if s.generation != gen || s.phase != PhaseFinishing {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseFinished
	s.finishedAt = s.now()
	s.updatedAt = s.finishedAt
	snap := s.snapshotLocked()
	hook := s.onFinish
	s.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
}

// AnswerResult is the feedback shown after choosing an option.
type AnswerResult struct {
	QuestionID  int               `json:"question_id"`
	OptionID    string            `json:"option_id"`
	Correct     bool              `json:"correct"`
	Profile     models.ProfileTag `json:"profile,omitempty"`
	ScoreDelta  int               `json:"score_delta"`
	Explanation string            `json:"explanation"`
}

// Answer records the chosen option for the question on screen and closes it.
func (s *Session) Answer(optionID string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return AnswerResult{}, ErrNoQuestion
	}
	opt, ok := s.current.Option(optionID)
	if !ok {
		return AnswerResult{}, ErrUnknownOption
	}

	res := AnswerResult{
		QuestionID:  s.current.ID,
		OptionID:    opt.ID,
		Correct:     opt.Correct,
		Explanation: opt.Explanation,
	}
	switch s.cfg.Mode {
	case ModeProfile:
		s.counts.Inc(opt.Profile)
		res.Profile = opt.Profile
	case ModeQuiz:
		if opt.Correct {
			s.player.Score += s.cfg.ScoreBonus
			res.ScoreDelta = s.cfg.ScoreBonus
		}
	}
	s.player.Answers = append(s.player.Answers, models.AnswerRecord{
		QuestionID: s.current.ID,
		OptionID:   opt.ID,
		Profile:    opt.Profile,
		Correct:    opt.Correct,
		AnsweredAt: s.now(),
	})
	s.current = nil
	s.updatedAt = s.now()
	return res, nil
}

// Reset starts over with the same player name on a fresh board. A pending
// finish step from the previous run is cancelled.
func (s *Session) Reset() {
	if s.sched != nil {
		s.sched.Cancel(s.id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Close cancels timers tied to this session.
func (s *Session) Close() {
	if s.sched != nil {
		s.sched.Cancel(s.id)
	}
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// CompleteTopic marks a bullying type as studied. It reports whether it was new.
func (s *Session) CompleteTopic(typeID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.topics {
		if id == typeID {
			return false
		}
	}
	s.topics = append(s.topics, typeID)
	s.updatedAt = s.now()
	return true
}

// Finished reports whether the finish step has run.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseFinished
}

// UpdatedAt is the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	p := s.player
	p.Answers = append([]models.AnswerRecord(nil), s.player.Answers...)
	return Snapshot{
		SessionID:  s.id,
		Mode:       s.cfg.Mode,
		Player:     p,
		Counts:     s.counts.Clone(),
		TotalCells: s.cfg.TotalCells,
		StartedAt:  s.createdAt,
		FinishedAt: s.finishedAt,
	}
}

// View is the client-facing state of a session.
type View struct {
	ID                string               `json:"id"`
	Mode              Mode                 `json:"mode"`
	Phase             Phase                `json:"phase"`
	Player            models.Player        `json:"player"`
	TotalCells        int                  `json:"total_cells"`
	Board             []BoardCell          `json:"board"`
	LastRoll          int                  `json:"last_roll,omitempty"`
	Question          *QuestionView        `json:"question,omitempty"`
	ProfileCounts     models.ProfileCounts `json:"profile_counts,omitempty"`
	QuestionsAnswered int                  `json:"questions_answered"`
	CanRoll           bool                 `json:"can_roll"`
	Topics            []int                `json:"completed_topics"`
	CreatedAt         time.Time            `json:"created_at"`
	FinishedAt        *time.Time           `json:"finished_at,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	v := View{
		ID:                s.id,
		Mode:              s.cfg.Mode,
		Phase:             s.phase,
		Player:            snap.Player,
		TotalCells:        s.cfg.TotalCells,
		Board:             append([]BoardCell(nil), s.board...),
		LastRoll:          s.lastRoll,
		QuestionsAnswered: len(s.player.Answers),
		CanRoll:           s.current == nil && (s.phase == PhaseIdle || s.phase == PhaseMoved),
		Topics:            append([]int{}, s.topics...),
		CreatedAt:         s.createdAt,
	}
	if s.cfg.Mode == ModeProfile {
		v.ProfileCounts = snap.Counts
	}
	if s.current != nil {
		qv := s.current.View()
		v.Question = &qv
	}
	if !s.finishedAt.IsZero() {
		t := s.finishedAt
		v.FinishedAt = &t
	}
	return v
}

// QuestionView hides scoring fields until the player answers.
type QuestionView struct {
	ID       int          `json:"id"`
	Prompt   string       `json:"prompt"`
	Category CategoryTag  `json:"category,omitempty"`
	Options  []OptionView `json:"options"`
}

type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (q Question) View() QuestionView {
	opts := make([]OptionView, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, OptionView{ID: o.ID, Text: o.Text})
	}
	return QuestionView{ID: q.ID, Prompt: q.Prompt, Category: q.Category, Options: opts}
}
