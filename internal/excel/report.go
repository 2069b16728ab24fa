package excel

import (
	"fmt"
	"time"

	"github.com/example/skillbuilder/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the progress report
const (
	OverviewSheet = "Overview"
	DomainsSheet  = "Domains"
	QuizzesSheet  = "Quizzes"
)

// ReportData is everything rendered into a progress report
type ReportData struct {
	User        models.User
	GeneratedAt time.Time
	Stats       models.ProgressStats
	Domains     []models.DomainProgress
	QuizResults []QuizResultRow
}

// QuizResultRow is a quiz result with the quiz title resolved
type QuizResultRow struct {
	Title       string
	Score       int
	CompletedAt time.Time
}

// BuildReport renders the report workbook: an overview sheet with a pie
// chart of module states, a domain sheet with a column chart and the
// quiz results
func BuildReport(data ReportData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", OverviewSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeOverview(f, data); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDomains(f, data.Domains); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeQuizzes(f, data.QuizResults); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// RenderReport builds the report and returns it as .xlsx bytes
func RenderReport(data ReportData) ([]byte, error) {
	f, err := BuildReport(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportFileName returns the download name of a user's report
func ReportFileName(user models.User, at time.Time) string {
	return fmt.Sprintf("progress-%s-%s.xlsx", user.Username, at.Format("2006-01-02"))
}

func writeOverview(f *excelize.File, data ReportData) error {
	stats := data.Stats
	rows := [][]interface{}{
		{"Progress Report", data.User.DisplayName()},
		{"Generated", data.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Total Modules", stats.TotalModules},
		{"Completed", stats.CompletedModules},
		{"In Progress", stats.InProgressModules},
		{"Not Started", stats.NotStartedModules},
		{"Completion %", stats.CompletionPercentage},
	}
	if err := setRows(f, OverviewSheet, 1, rows); err != nil {
		return err
	}

	if !stats.HasData {
		return setRows(f, OverviewSheet, 10, [][]interface{}{{"No modules available yet"}})
	}

	// chart source data
	chartRows := [][]interface{}{
		{"Status", "Modules"},
		{"Completed", stats.CompletedModules},
		{"In Progress", stats.InProgressModules},
		{"Not Started", clampZero(stats.NotStartedModules)},
	}
	if err := setRows(f, OverviewSheet, 10, chartRows); err != nil {
		return err
	}

	err := f.AddChart(OverviewSheet, "D2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       OverviewSheet + "!$B$10",
			Categories: OverviewSheet + "!$A$11:$A$13",
			Values:     OverviewSheet + "!$B$11:$B$13",
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to add overview chart: %w", err)
	}
	return f.SetColWidth(OverviewSheet, "A", "A", 20)
}

func writeDomains(f *excelize.File, domains []models.DomainProgress) error {
	if _, err := f.NewSheet(DomainsSheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", DomainsSheet, err)
	}

	rows := [][]interface{}{{"Domain", "Completed", "Total", "Percentage"}}
	for _, d := range domains {
		rows = append(rows, []interface{}{d.Name, d.Completed, d.Total, d.Percentage})
	}
	if err := setRows(f, DomainsSheet, 1, rows); err != nil {
		return err
	}
	if len(domains) == 0 {
		return nil
	}

	last := len(domains) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", DomainsSheet, last)
	err := f.AddChart(DomainsSheet, "F2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       DomainsSheet + "!$B$1",
				Categories: categories,
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", DomainsSheet, last),
			},
			{
				Name:       DomainsSheet + "!$C$1",
				Categories: categories,
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", DomainsSheet, last),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add domain chart: %w", err)
	}
	return f.SetColWidth(DomainsSheet, "A", "A", 24)
}

func writeQuizzes(f *excelize.File, results []QuizResultRow) error {
	if _, err := f.NewSheet(QuizzesSheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", QuizzesSheet, err)
	}
	rows := [][]interface{}{{"Quiz", "Score", "Completed At"}}
	for _, r := range results {
		rows = append(rows, []interface{}{r.Title, r.Score, r.CompletedAt.Format("2006-01-02 15:04")})
	}
	if err := setRows(f, QuizzesSheet, 1, rows); err != nil {
		return err
	}
	return f.SetColWidth(QuizzesSheet, "A", "A", 24)
}

func setRows(f *excelize.File, sheet string, startRow int, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, startRow+i, err)
		}
	}
	return nil
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
