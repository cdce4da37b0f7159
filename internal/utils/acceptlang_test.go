package utils

import "testing"

var testLocales = []string{"pt", "en"}

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("en-GB", "pt-BR,pt;q=0.9,en;q=0.8", testLocales, "pt")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "pt-BR,pt;q=0.9,en;q=0.8", testLocales, "en")
	if got != "pt" {
		t.Fatalf("want pt, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "pt;q=0.5,en;q=0.8", testLocales, "pt")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_ZeroQIgnored(t *testing.T) {
	got := DetermineLocale("", "en;q=0,fr", testLocales, "pt")
	if got != "pt" {
		t.Fatalf("want pt, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", testLocales, "pt")
	if got != "pt" {
		t.Fatalf("want pt fallback, got %s", got)
	}
	if got := DetermineLocale("", "", testLocales, "de"); got != "pt" {
		t.Fatalf("want first supported, got %s", got)
	}
}
