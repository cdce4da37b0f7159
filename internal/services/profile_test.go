package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/soaringjerry/Jornada/internal/models"
)

func TestClassifyNoAnswers(t *testing.T) {
	d := Classify(models.NewProfileCounts())
	if d.DominantProfile != "Não identificado" || d.DominantTag != "" {
		t.Fatalf("expected insufficient-data diagnosis, got %+v", d)
	}
	if d.Analysis == "" || len(d.Tips) == 0 || len(d.Recommendations) == 0 {
		t.Fatalf("insufficient-data block must carry generic content: %+v", d)
	}
	for tag, pct := range Percentages(models.NewProfileCounts()) {
		if pct != "0.00" {
			t.Fatalf("expected 0.00 for %s, got %s", tag, pct)
		}
	}
	if d := Classify(nil); d.DominantTag != "" {
		t.Fatalf("nil counts should classify as insufficient")
	}
}

func TestClassifySingleProfile(t *testing.T) {
	counts := models.NewProfileCounts()
	counts[models.ProfileInterventor] = 5
	d := Classify(counts)
	if d.DominantTag != models.ProfileInterventor || d.DominantProfile != "Interventor Positivo" {
		t.Fatalf("unexpected diagnosis: %+v", d)
	}
	if p := Percentages(counts); p[models.ProfileInterventor] != "100.00" || p[models.ProfileAgressor] != "0.00" {
		t.Fatalf("unexpected percentages: %v", p)
	}
}

func TestClassifySessionScenario(t *testing.T) {
	counts := models.NewProfileCounts()
	for _, tag := range []models.ProfileTag{models.ProfileEspectador, models.ProfileEspectador, models.ProfileInterventor} {
		counts.Inc(tag)
	}
	want := map[models.ProfileTag]string{
		models.ProfileAgressor:               "0.00",
		models.ProfileVitima:                 "0.00",
		models.ProfileVitimaAgressora:        "0.00",
		models.ProfileVitimaAgressoraCiclica: "0.00",
		models.ProfileEspectador:             "66.67",
		models.ProfileInterventor:            "33.33",
	}
	if diff := cmp.Diff(want, Percentages(counts)); diff != "" {
		t.Fatalf("percentages mismatch (-want +got):\n%s", diff)
	}
	if d := Classify(counts); d.DominantTag != models.ProfileEspectador {
		t.Fatalf("expected espectador, got %s", d.DominantTag)
	}
}

func TestDominantTieBreak(t *testing.T) {
	counts := models.NewProfileCounts()
	counts[models.ProfileInterventor] = 2
	counts[models.ProfileVitima] = 2
	counts[models.ProfileEspectador] = 1
	tag, ok := DominantProfile(counts)
	if !ok || tag != models.ProfileVitima {
		t.Fatalf("tie should go to the earlier tag, got %s", tag)
	}
}

func TestClassifyLocaleAndContentTable(t *testing.T) {
	counts := models.NewProfileCounts()
	counts[models.ProfileAgressor] = 1
	if d := ClassifyLocale(counts, "en"); d.DominantProfile != "Aggressor" {
		t.Fatalf("unexpected english label %q", d.DominantProfile)
	}
	if d := ClassifyLocale(counts, "fr"); d.DominantProfile != "Agressor" {
		t.Fatalf("unknown locale should fall back to pt, got %q", d.DominantProfile)
	}
	for locale, table := range diagnosisContent {
		for _, tag := range models.Profiles {
			block, ok := table.profiles[tag]
			if !ok || block.Analysis == "" {
				t.Fatalf("%s: missing content for %s", locale, tag)
			}
			if n := len(block.Tips); n < 3 || n > 5 {
				t.Fatalf("%s/%s: %d tips", locale, tag, n)
			}
			if len(block.Recommendations) != 3 {
				t.Fatalf("%s/%s: %d recommendations", locale, tag, len(block.Recommendations))
			}
		}
	}
}

func TestClassifyReturnsCopies(t *testing.T) {
	counts := models.NewProfileCounts()
	counts[models.ProfileVitima] = 1
	d := Classify(counts)
	d.Tips[0] = "changed"
	if Classify(counts).Tips[0] == "changed" {
		t.Fatalf("diagnosis must not alias the content table")
	}
}
