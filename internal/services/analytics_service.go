package services

import (
	"context"
	"fmt"

	"github.com/soaringjerry/Jornada/internal/models"
)

type reportLister interface {
	List(ctx context.Context) ([]models.Report, error)
}

type AnalyticsService struct {
	reports reportLister
}

type ProfileStat struct {
	Profile  models.ProfileTag `json:"profile"`
	Label    string            `json:"label"`
	Total    int               `json:"total"`
	Average  string            `json:"average"`
	Dominant int               `json:"dominant"`
}

type ReportStats struct {
	Reports      int           `json:"reports"`
	Answers      int           `json:"answers"`
	Unidentified int           `json:"unidentified"`
	Profiles     []ProfileStat `json:"profiles"`
}

func NewAnalyticsService(reports reportLister) *AnalyticsService {
	return &AnalyticsService{reports: reports}
}

// Stats aggregates every stored report: per-profile totals, the average count
// per game ("%.1f") and how often each profile came out dominant.
func (s *AnalyticsService) Stats(ctx context.Context, locale string) (*ReportStats, error) {
	list, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeReports(list, locale), nil
}

func SummarizeReports(list []models.Report, locale string) *ReportStats {
	totals := models.NewProfileCounts()
	dominant := models.NewProfileCounts()
	out := &ReportStats{Reports: len(list)}
	for _, r := range list {
		for _, tag := range models.Profiles {
			totals[tag] += r.ProfileCounts[tag]
		}
		if tag, ok := DominantProfile(r.ProfileCounts); ok {
			dominant[tag]++
		} else {
			out.Unidentified++
		}
	}
	out.Answers = totals.Total()
	out.Profiles = make([]ProfileStat, 0, len(models.Profiles))
	for _, tag := range models.Profiles {
		avg := 0.0
		if len(list) > 0 {
			avg = float64(totals[tag]) / float64(len(list))
		}
		out.Profiles = append(out.Profiles, ProfileStat{
			Profile:  tag,
			Label:    ProfileLabel(tag, locale),
			Total:    totals[tag],
			Average:  fmt.Sprintf("%.1f", avg),
			Dominant: dominant[tag],
		})
	}
	return out
}
