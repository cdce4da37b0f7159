// Package content holds the embedded question banks and the bullying-type study catalog.
package content

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/soaringjerry/Jornada/internal/game"
)

//go:embed data/*.json
var dataFS embed.FS

// BullyingType is one entry of the study catalog.
type BullyingType struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Icon         string   `json:"icon"`
	Causes       []string `json:"causes"`
	Consequences []string `json:"consequences"`
	Prevention   []string `json:"prevention"`
}

func readJSON(name string, v any) error {
	b, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func loadBank(kind game.BankKind, name string) (*game.Bank, error) {
	var qs []game.Question
	if err := readJSON(name, &qs); err != nil {
		return nil, err
	}
	bank, err := game.NewBank(kind, qs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return bank, nil
}

// ScenarioBank is the profile-variant bank used on the full board.
func ScenarioBank() (*game.Bank, error) {
	return loadBank(game.BankProfile, "scenario_questions.json")
}

// QuizBank is the correctness-variant bank used by the short quiz board.
func QuizBank() (*game.Bank, error) {
	return loadBank(game.BankCorrectness, "quiz_questions.json")
}

// BullyingTypes returns the study catalog in display order.
func BullyingTypes() ([]BullyingType, error) {
	var out []BullyingType
	if err := readJSON("bullying_types.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog is everything the service serves from embedded data, loaded once at boot.
type Catalog struct {
	Scenario *game.Bank
	Quiz     *game.Bank
	Types    []BullyingType
}

func Load() (*Catalog, error) {
	scenario, err := ScenarioBank()
	if err != nil {
		return nil, err
	}
	quiz, err := QuizBank()
	if err != nil {
		return nil, err
	}
	types, err := BullyingTypes()
	if err != nil {
		return nil, err
	}
	return &Catalog{Scenario: scenario, Quiz: quiz, Types: types}, nil
}

// Bank returns the bank a session mode draws from.
func (c *Catalog) Bank(mode game.Mode) *game.Bank {
	if mode == game.ModeQuiz {
		return c.Quiz
	}
	return c.Scenario
}

// Type looks up a catalog entry by id.
func (c *Catalog) Type(id int) (BullyingType, bool) {
	for _, t := range c.Types {
		if t.ID == id {
			return t, true
		}
	}
	return BullyingType{}, false
}
