package services

import (
	"math"

	"github.com/soaringjerry/Jornada/internal/models"
)

type PerformanceTier string

const (
	TierPerfect   PerformanceTier = "perfect"
	TierExcellent PerformanceTier = "excellent"
	TierGood      PerformanceTier = "good"
	TierKeepGoing PerformanceTier = "keep_going"
	TierNoAnswers PerformanceTier = "no_answers"
)

// Performance is the end-of-quiz summary.
type Performance struct {
	Tier       PerformanceTier `json:"tier"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Score      int             `json:"score"`
	Correct    int             `json:"correct"`
	Answered   int             `json:"answered"`
	Percentage int             `json:"percentage"`
}

type tierText struct{ Title, Message string }

var performanceContent = map[string]map[PerformanceTier]tierText{
	"pt": {
		TierPerfect:   {"🏆 Perfeito! Herói Anti-Bullying!", "Você gabaritou! Seu conhecimento e empatia são inspiradores. Continue sendo essa força do bem!"},
		TierExcellent: {"🌟 Excelente! Defensor da Paz!", "Seu desempenho foi incrível! Você tem um ótimo entendimento sobre como combater o bullying."},
		TierGood:      {"👍 Bom Trabalho! Guardião em Treinamento!", "Você está no caminho certo! Continue aprendendo para se tornar um especialista em criar ambientes seguros."},
		TierKeepGoing: {"💪 Continue Aprendendo, Futuro Aliado!", "Não desanime! Cada erro é uma oportunidade de aprendizado. Jogue de novo para fortalecer seu conhecimento."},
		TierNoAnswers: {"Vamos Tentar de Novo?", "Parece que você não respondeu muitas perguntas. Jogue novamente para aprender mais!"},
	},
	"en": {
		TierPerfect:   {"🏆 Perfect! Anti-Bullying Hero!", "A perfect score! Your knowledge and empathy are inspiring. Keep being a force for good!"},
		TierExcellent: {"🌟 Excellent! Peace Defender!", "Amazing performance! You have a great understanding of how to fight bullying."},
		TierGood:      {"👍 Good Job! Guardian in Training!", "You are on the right track! Keep learning to become an expert in building safe environments."},
		TierKeepGoing: {"💪 Keep Learning, Future Ally!", "Do not give up! Every mistake is a chance to learn. Play again to build your knowledge."},
		TierNoAnswers: {"Shall We Try Again?", "Looks like you did not answer many questions. Play again to learn more!"},
	},
}

// EvaluatePerformance grades a quiz run by the rounded share of correct answers.
func EvaluatePerformance(score int, answers []models.AnswerRecord, locale string) Performance {
	p := Performance{Score: score, Answered: len(answers)}
	for _, a := range answers {
		if a.Correct {
			p.Correct++
		}
	}
	switch {
	case p.Answered == 0:
		p.Tier = TierNoAnswers
	default:
		p.Percentage = int(math.Round(float64(p.Correct) * 100 / float64(p.Answered)))
		switch {
		case p.Percentage == 100:
			p.Tier = TierPerfect
		case p.Percentage >= 80:
			p.Tier = TierExcellent
		case p.Percentage >= 50:
			p.Tier = TierGood
		default:
			p.Tier = TierKeepGoing
		}
	}
	texts, ok := performanceContent[locale]
	if !ok {
		texts = performanceContent["pt"]
	}
	p.Title, p.Message = texts[p.Tier].Title, texts[p.Tier].Message
	return p
}
