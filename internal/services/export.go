package services

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/Jornada/internal/models"
	"github.com/soaringjerry/Jornada/internal/utils"
)

// ExportOptions controls labels and the time zone used to print dates.
type ExportOptions struct {
	Locale   string
	Location *time.Location
}

func (o ExportOptions) locale() string {
	if o.Locale == "" {
		return utils.DefaultLocale
	}
	return o.Locale
}

func (o ExportOptions) formatDate(t time.Time) string {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	if o.locale() == "en" {
		return t.Format("01/02/2006, 3:04:05 PM")
	}
	return t.Format("02/01/2006, 15:04:05")
}

// ExportReportJSON renders one report as 2-space indented JSON.
func ExportReportJSON(r models.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ExportReportsJSON renders every report as one indented array.
func ExportReportsJSON(rs []models.Report) ([]byte, error) {
	if rs == nil {
		rs = []models.Report{}
	}
	return json.MarshalIndent(rs, "", "  ")
}

const utf8BOM = "\ufeff"

// ExportReportCSV renders the spreadsheet layout of a report: UTF-8 BOM,
// every cell double quoted, rows separated by \n.
func ExportReportCSV(r models.Report, opts ExportOptions) []byte {
	loc := opts.locale()
	rows := [][]string{
		{utils.T(loc, "report.title")},
		{""},
		{utils.T(loc, "report.player"), r.PlayerName},
		{utils.T(loc, "report.date"), opts.formatDate(r.Date)},
		{""},
		{utils.T(loc, "report.counts")},
		{utils.T(loc, "report.profile"), utils.T(loc, "report.count"), utils.T(loc, "report.percentage")},
	}
	for _, tag := range models.Profiles {
		rows = append(rows, []string{ProfileLabel(tag, loc), strconv.Itoa(r.ProfileCounts[tag]), percentOf(r, tag)})
	}
	rows = append(rows,
		[]string{""},
		[]string{utils.T(loc, "report.diagnosis")},
		[]string{utils.T(loc, "report.dominant"), r.Diagnosis.DominantProfile},
		[]string{utils.T(loc, "report.analysis"), r.Diagnosis.Analysis},
		[]string{""},
		[]string{utils.T(loc, "report.tips")},
	)
	for _, tip := range r.Diagnosis.Tips {
		rows = append(rows, []string{"", tip})
	}
	rows = append(rows, []string{""}, []string{utils.T(loc, "report.recommendations")})
	for _, rec := range r.Diagnosis.Recommendations {
		rows = append(rows, []string{"", rec})
	}

	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes()
}

func percentOf(r models.Report, tag models.ProfileTag) string {
	if v, ok := r.Percentages[tag]; ok && v != "" {
		return v
	}
	return "0.00"
}

var reportHTML = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Player}}</title>
<style>
body { font-family: Arial, sans-serif; padding: 40px; color: #333; }
h1 { color: #7c3aed; }
h2 { color: #6366f1; margin-top: 30px; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
th { background-color: #7c3aed; color: white; }
.section { margin: 30px 0; padding: 20px; background-color: #f9fafb; border-radius: 8px; }
.tip, .rec { margin: 10px 0; padding: 10px; background-color: white; border-left: 4px solid #10b981; }
.rec { border-left-color: #3b82f6; }
@media print { .section { break-inside: avoid; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p><strong>{{.PlayerLabel}}:</strong> {{.Player}}</p>
<p><strong>{{.DateLabel}}:</strong> {{.Date}}</p>
<div class="section">
<h2>{{.CountsLabel}}</h2>
<table>
<tr><th>{{.ProfileLabel}}</th><th>{{.CountLabel}}</th><th>{{.PercentLabel}}</th></tr>
{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Count}}</td><td>{{.Percent}}%</td></tr>
{{end}}</table>
</div>
<div class="section">
<h2>{{.DiagnosisLabel}}</h2>
<p><strong>{{.DominantLabel}}:</strong> {{.Dominant}}</p>
<p>{{.Analysis}}</p>
</div>
<div class="section">
<h2>{{.TipsLabel}}</h2>
{{range .Tips}}<div class="tip">✓ {{.}}</div>
{{end}}</div>
<div class="section">
<h2>{{.RecsLabel}}</h2>
{{range .Recs}}<div class="rec">→ {{.}}</div>
{{end}}</div>
</body>
</html>
`))

type htmlRow struct {
	Label   string
	Count   int
	Percent string
}

// ExportReportHTML renders a printable, escaped document for "save as PDF".
func ExportReportHTML(r models.Report, opts ExportOptions) ([]byte, error) {
	loc := opts.locale()
	rows := make([]htmlRow, 0, len(models.Profiles))
	for _, tag := range models.Profiles {
		rows = append(rows, htmlRow{Label: ProfileLabel(tag, loc), Count: r.ProfileCounts[tag], Percent: percentOf(r, tag)})
	}
	data := map[string]any{
		"Lang":           loc,
		"Title":          utils.T(loc, "report.title"),
		"PlayerLabel":    utils.T(loc, "report.player"),
		"Player":         r.PlayerName,
		"DateLabel":      utils.T(loc, "report.date"),
		"Date":           opts.formatDate(r.Date),
		"CountsLabel":    utils.T(loc, "report.counts"),
		"ProfileLabel":   utils.T(loc, "report.profile"),
		"CountLabel":     utils.T(loc, "report.count"),
		"PercentLabel":   utils.T(loc, "report.percentage"),
		"Rows":           rows,
		"DiagnosisLabel": utils.T(loc, "report.diagnosis"),
		"DominantLabel":  utils.T(loc, "report.dominant"),
		"Dominant":       r.Diagnosis.DominantProfile,
		"Analysis":       r.Diagnosis.Analysis,
		"TipsLabel":      utils.T(loc, "report.tips"),
		"Tips":           r.Diagnosis.Tips,
		"RecsLabel":      utils.T(loc, "report.recommendations"),
		"Recs":           r.Diagnosis.Recommendations,
	}
	var buf bytes.Buffer
	if err := reportHTML.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var filenameReplacer = strings.NewReplacer("/", "-", `\`, "-", `"`, "", "\n", " ", "\r", " ", "\t", " ")

// ReportFilename is relatorio-bullying-<player>-<YYYY-MM-DD>.<ext> (localized prefix).
func ReportFilename(r models.Report, ext, locale string) string {
	name := strings.TrimSpace(filenameReplacer.Replace(r.PlayerName))
	return utils.T(locale, "report.filename") + "-" + name + "-" + r.Date.UTC().Format("2006-01-02") + "." + ext
}

// AllReportsFilename is todos-relatorios-<YYYY-MM-DD>.json (localized prefix).
func AllReportsFilename(now time.Time, locale string) string {
	return utils.T(locale, "report.all_filename") + "-" + now.UTC().Format("2006-01-02") + ".json"
}
