package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ProfileTag is the behavioural category a single answer points to.
type ProfileTag string

const (
	ProfileAgressor               ProfileTag = "agressor"
	ProfileVitima                 ProfileTag = "vitima"
	ProfileVitimaAgressora        ProfileTag = "vitima-agressora"
	ProfileVitimaAgressoraCiclica ProfileTag = "vitima-agressora-ciclica"
	ProfileEspectador             ProfileTag = "espectador"
	ProfileInterventor            ProfileTag = "interventor"
)

// Profiles is the fixed enumeration order. Dominant-profile ties resolve to the
// earliest tag here, and exports list rows in this order.
var Profiles = []ProfileTag{
	ProfileAgressor,
	ProfileVitima,
	ProfileVitimaAgressora,
	ProfileVitimaAgressoraCiclica,
	ProfileEspectador,
	ProfileInterventor,
}

func (p ProfileTag) Valid() bool {
	for _, t := range Profiles {
		if t == p {
			return true
		}
	}
	return false
}

// ProfileCounts maps each tag to the number of answers that pointed to it.
type ProfileCounts map[ProfileTag]int

// NewProfileCounts returns counts with every tag present at zero.
func NewProfileCounts() ProfileCounts {
	c := make(ProfileCounts, len(Profiles))
	for _, t := range Profiles {
		c[t] = 0
	}
	return c
}

// Inc bumps tag by one. Unknown tags are ignored.
func (c ProfileCounts) Inc(tag ProfileTag) bool {
	if !tag.Valid() {
		return false
	}
	c[tag]++
	return true
}

func (c ProfileCounts) Total() int {
	total := 0
	for _, t := range Profiles {
		total += c[t]
	}
	return total
}

// Clone returns a normalized copy holding exactly the six known tags.
func (c ProfileCounts) Clone() ProfileCounts {
	out := NewProfileCounts()
	for _, t := range Profiles {
		out[t] = c[t]
	}
	return out
}

// Diagnosis is derived from ProfileCounts and never stored on its own.
type Diagnosis struct {
	DominantProfile string     `json:"dominantProfile"`
	DominantTag     ProfileTag `json:"dominantTag,omitempty"`
	Analysis        string     `json:"analysis"`
	Tips            []string   `json:"tips"`
	Recommendations []string   `json:"recommendations"`
}

// UnmarshalJSON also accepts the Portuguese keys written by the browser version.
func (d *Diagnosis) UnmarshalJSON(b []byte) error {
	var raw struct {
		DominantProfile string     `json:"dominantProfile"`
		DominantTag     ProfileTag `json:"dominantTag"`
		Analysis        string     `json:"analysis"`
		Tips            []string   `json:"tips"`
		Recommendations []string   `json:"recommendations"`

		PerfilDominante string   `json:"perfilDominante"`
		Analise         string   `json:"analise"`
		Dicas           []string `json:"dicas"`
		Recomendacoes   []string `json:"recomendacoes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Diagnosis{
		DominantProfile: firstNonEmpty(raw.DominantProfile, raw.PerfilDominante),
		DominantTag:     raw.DominantTag,
		Analysis:        firstNonEmpty(raw.Analysis, raw.Analise),
		Tips:            raw.Tips,
		Recommendations: raw.Recommendations,
	}
	if d.Tips == nil {
		d.Tips = raw.Dicas
	}
	if d.Recommendations == nil {
		d.Recommendations = raw.Recomendacoes
	}
	return nil
}

// Report is the persisted snapshot of one finished session.
type Report struct {
	ID            string                `json:"id"`
	PlayerName    string                `json:"playerName"`
	Date          time.Time             `json:"date"`
	ProfileCounts ProfileCounts         `json:"profileCounts"`
	Percentages   map[ProfileTag]string `json:"percentages"`
	Diagnosis     Diagnosis             `json:"diagnosis"`
}

// UnmarshalJSON tolerates absent fields and numeric ids.
func (r *Report) UnmarshalJSON(b []byte) error {
	type alias Report
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Report(raw.alias)
	r.ID = decodeID(raw.ID)
	if r.ProfileCounts == nil {
		r.ProfileCounts = NewProfileCounts()
	}
	if r.Percentages == nil {
		r.Percentages = map[ProfileTag]string{}
	}
	return nil
}

func decodeID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return num.String()
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// AnswerRecord is one answered question within a session.
type AnswerRecord struct {
	QuestionID int        `json:"questionId"`
	OptionID   string     `json:"optionId"`
	Profile    ProfileTag `json:"profile,omitempty"`
	Correct    bool       `json:"correct"`
	AnsweredAt time.Time  `json:"answeredAt"`
}

// Player lives for one session only.
type Player struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Score    int            `json:"score"`
	Answers  []AnswerRecord `json:"answers"`
}
