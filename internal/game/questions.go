package game

import (
	"errors"
	"fmt"

	"github.com/soaringjerry/Jornada/internal/models"
)

// BankKind says how an option is scored.
type BankKind string

const (
	// BankProfile options each carry a ProfileTag.
	BankProfile BankKind = "profile"
	// BankCorrectness options carry a correct flag, exactly one per question.
	BankCorrectness BankKind = "correctness"
)

// Option is one answer choice. Which of Correct/Profile is meaningful depends on the bank.
type Option struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Correct     bool              `json:"correct,omitempty"`
	Profile     models.ProfileTag `json:"profile,omitempty"`
	Explanation string            `json:"explanation"`
}

// Question is a scenario with two or more options.
type Question struct {
	ID       int         `json:"id"`
	Prompt   string      `json:"prompt"`
	Category CategoryTag `json:"category,omitempty"`
	Options  []Option    `json:"options"`
}

// Option looks up an option by id.
func (q *Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Bank is an immutable, validated set of questions.
type Bank struct {
	Kind      BankKind
	Questions []Question
}

var ErrInvalidBank = errors.New("invalid question bank")

// NewBank validates qs and wraps them.
func NewBank(kind BankKind, qs []Question) (*Bank, error) {
	b := &Bank{Kind: kind, Questions: qs}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bank) Validate() error {
	if b.Kind != BankProfile && b.Kind != BankCorrectness {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBank, b.Kind)
	}
	seen := make(map[int]struct{}, len(b.Questions))
	for _, q := range b.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidBank, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidBank, q.ID, len(q.Options))
		}
		optIDs := make(map[string]struct{}, len(q.Options))
		correct := 0
		for _, o := range q.Options {
			if o.ID == "" {
				return fmt.Errorf("%w: question %d has an option without id", ErrInvalidBank, q.ID)
			}
			if _, dup := optIDs[o.ID]; dup {
				return fmt.Errorf("%w: question %d repeats option %q", ErrInvalidBank, q.ID, o.ID)
			}
			optIDs[o.ID] = struct{}{}
			if o.Correct {
				correct++
			}
			if b.Kind == BankProfile && !o.Profile.Valid() {
				return fmt.Errorf("%w: question %d option %q has profile %q", ErrInvalidBank, q.ID, o.ID, o.Profile)
			}
		}
		if b.Kind == BankCorrectness && correct != 1 {
			return fmt.Errorf("%w: question %d has %d correct options", ErrInvalidBank, q.ID, correct)
		}
	}
	return nil
}

func (b *Bank) Len() int { return len(b.Questions) }

// Sample returns n questions picked without replacement via a shuffled copy.
// n larger than the bank returns the whole bank, shuffled.
func (b *Bank) Sample(r Rand, n int) []Question {
	cp := append([]Question(nil), b.Questions...)
	Shuffle(r, cp)
	if n >= 0 && n < len(cp) {
		cp = cp[:n]
	}
	return cp
}

// DrawQuestion picks uniformly among pool entries whose id is not in used. Once
// every id is used it picks uniformly among the whole pool, so repeats happen
// instead of failures. ok is false only for an empty pool.
func DrawQuestion(r Rand, pool []Question, used map[int]bool) (q Question, ok bool) {
	if len(pool) == 0 {
		return Question{}, false
	}
	available := make([]int, 0, len(pool))
	for i, cand := range pool {
		if !used[cand.ID] {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		return pool[r.IntN(len(pool))], true
	}
	return pool[available[r.IntN(len(available))]], true
}
