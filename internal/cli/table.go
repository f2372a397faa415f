package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/scoring"
	"github.com/okian/qualify/internal/domain/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Foreground(lipgloss.Color("10"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func renderStandings(w io.Writer, c model.Category, rows []types.Standing) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d interviewed)", c, len(rows))))
	if len(rows) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RANK", "TEAM", "INTERVIEW", "QCM", "POINTS", "DECISION")
	for _, r := range rows {
		qcm := "-"
		if r.QcmScore != nil {
			qcm = strconv.Itoa(*r.QcmScore)
		}
		t.Row(strconv.Itoa(r.Rank), r.Name, strconv.FormatFloat(r.InterviewScore, 'f', -1, 64), qcm,
			strconv.Itoa(r.Points), string(r.Decision))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row >= 0 && row < len(rows) && rows[row].Decision == model.DecisionSelected:
			return selectedStyle
		default:
			return cellStyle
		}
	})
	fmt.Fprintln(w, t.Render())
}

func renderPoints(w io.Writer, teams []model.Team, calc *scoring.Calculator) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TEAM", "CATEGORY", "QCM", "INTERVIEW", "DIVERSITY", "SKILLS", "TOTAL")
	for i := range teams {
		b := calc.Breakdown(&teams[i])
		t.Row(teams[i].Name, string(teams[i].Category), ff(b.Qcm), ff(b.Interview), ff(b.Diversity), ff(b.Skills),
			strconv.Itoa(b.Total))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	fmt.Fprintln(w, t.Render())
}

func renderWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
