package utils

// Server-side message table. Long-form narrative content (diagnoses, performance
// tiers) lives in the services content tables; this holds labels only.

const DefaultLocale = "pt"

// SupportedLocales lists locales with a complete message table.
var SupportedLocales = []string{"pt", "en"}

var translations = map[string]map[string]string{
	"pt": {
		"health.ok": "ok",

		"profile.agressor":                 "Agressor",
		"profile.vitima":                   "Vítima",
		"profile.vitima-agressora":         "Vítima-Agressora",
		"profile.vitima-agressora-ciclica": "Vítima-Agressora Cíclica",
		"profile.espectador":               "Espectador",
		"profile.interventor":              "Interventor Positivo",

		"category.fisico":      "Físico e Material",
		"category.verbal":      "Verbal e Psicológico",
		"category.relacional":  "Social/Relacional",
		"category.virtual":     "Virtual",
		"category.preconceito": "Preconceito e Discriminação",

		"report.title":           "Relatório Educativo - Jogo de Bullying",
		"report.player":          "Nome do Jogador",
		"report.date":            "Data",
		"report.counts":          "Contagem de Perfis",
		"report.profile":         "Perfil",
		"report.count":           "Quantidade",
		"report.percentage":      "Percentual (%)",
		"report.diagnosis":       "Diagnóstico",
		"report.dominant":        "Perfil Dominante",
		"report.analysis":        "Análise",
		"report.tips":            "Dicas de Convivência Saudável",
		"report.recommendations": "Recomendações",
		"report.unidentified":    "Não identificado",
		"report.filename":        "relatorio-bullying",
		"report.all_filename":    "todos-relatorios",
	},
	"en": {
		"health.ok": "ok",

		"profile.agressor":                 "Aggressor",
		"profile.vitima":                   "Victim",
		"profile.vitima-agressora":         "Victim-Aggressor",
		"profile.vitima-agressora-ciclica": "Cyclic Victim-Aggressor",
		"profile.espectador":               "Bystander",
		"profile.interventor":              "Positive Intervenor",

		"category.fisico":      "Physical and Material",
		"category.verbal":      "Verbal and Psychological",
		"category.relacional":  "Social/Relational",
		"category.virtual":     "Online",
		"category.preconceito": "Prejudice and Discrimination",

		"report.title":           "Educational Report - Bullying Game",
		"report.player":          "Player Name",
		"report.date":            "Date",
		"report.counts":          "Profile Counts",
		"report.profile":         "Profile",
		"report.count":           "Count",
		"report.percentage":      "Percentage (%)",
		"report.diagnosis":       "Diagnosis",
		"report.dominant":        "Dominant Profile",
		"report.analysis":        "Analysis",
		"report.tips":            "Tips for Healthy Coexistence",
		"report.recommendations": "Recommendations",
		"report.unidentified":    "Not identified",
		"report.filename":        "bullying-report",
		"report.all_filename":    "all-reports",
	},
}

// T returns the translated string for key in locale; falls back to the default
// locale, then to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations[DefaultLocale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
