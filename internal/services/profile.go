package services

import (
	"fmt"

	"github.com/soaringjerry/Jornada/internal/models"
	"github.com/soaringjerry/Jornada/internal/utils"
)

// Percentages returns 100*count/total for every tag, formatted with two
// decimals. All values are "0.00" when there are no answers.
func Percentages(counts models.ProfileCounts) map[models.ProfileTag]string {
	total := counts.Total()
	out := make(map[models.ProfileTag]string, len(models.Profiles))
	for _, tag := range models.Profiles {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[tag]) * 100 / float64(total)
		}
		out[tag] = fmt.Sprintf("%.2f", pct)
	}
	return out
}

// DominantProfile returns the tag with the strictly greatest count. Ties go to
// the earliest tag in models.Profiles. ok is false when there are no answers.
func DominantProfile(counts models.ProfileCounts) (tag models.ProfileTag, ok bool) {
	best := 0
	for _, t := range models.Profiles {
		if counts[t] > best {
			best = counts[t]
			tag = t
		}
	}
	return tag, best > 0
}

// Classify builds the diagnosis in the default locale.
func Classify(counts models.ProfileCounts) models.Diagnosis {
	return ClassifyLocale(counts, utils.DefaultLocale)
}

// ClassifyLocale picks the dominant profile and copies its content block.
func ClassifyLocale(counts models.ProfileCounts, locale string) models.Diagnosis {
	table := contentFor(locale)
	tag, ok := DominantProfile(counts)
	if !ok {
		block := table.insufficient
		return models.Diagnosis{
			DominantProfile: utils.T(locale, "report.unidentified"),
			Analysis:        block.Analysis,
			Tips:            append([]string(nil), block.Tips...),
			Recommendations: append([]string(nil), block.Recommendations...),
		}
	}
	block := table.profiles[tag]
	return models.Diagnosis{
		DominantProfile: ProfileLabel(tag, locale),
		DominantTag:     tag,
		Analysis:        block.Analysis,
		Tips:            append([]string(nil), block.Tips...),
		Recommendations: append([]string(nil), block.Recommendations...),
	}
}

// ProfileLabel is the display name of tag.
func ProfileLabel(tag models.ProfileTag, locale string) string {
	return utils.T(locale, "profile."+string(tag))
}
