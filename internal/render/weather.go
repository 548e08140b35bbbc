package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Sternrassler/weather-cli/pkg/display"
)

// Current draws the current weather panel, the details panel and the lookup time.
func (r *Renderer) Current(v *display.CurrentView) {
	l := v.Labels

	headline := v.Icon + " " + r.style("white", true).Render(v.Description)
	temps := r.style(v.TempBucket.Color(), true).Render(fmt.Sprintf("%.1f%s", v.Temp, l.Temp)) +
		r.dim(fmt.Sprintf(" (feels like %.1f%s)", v.FeelsLike, l.Temp))

	card := r.lg.NewStyle().Align(lipgloss.Center).Padding(1, 2)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.panel(fmt.Sprintf("%s, %s", v.City, v.Country), "cyan", card,
		lipgloss.JoinVertical(lipgloss.Center, headline, temps)))
	fmt.Fprintln(r.out)

	rows := [][2]string{
		{"💧 Humidity:", fmt.Sprintf("%d%%", v.Humidity)},
		{"🌬️  Wind:", fmt.Sprintf("%.1f %s", v.WindSpeed, l.Speed)},
		{"📊 Pressure:", fmt.Sprintf("%.0f %s", v.Pressure, l.Pressure)},
		{"🧭 Direction:", v.WindDirection},
	}
	labelWidth := 0
	for _, row := range rows {
		if w := lipgloss.Width(row[0]); w > labelWidth {
			labelWidth = w
		}
	}
	label := r.style("cyan", true).Width(labelWidth).Align(lipgloss.Right)
	value := r.style("white", false)

	lines := make([]string, 0, len(rows)+2)
	for _, row := range rows {
		lines = append(lines, label.Render(row[0])+" "+value.Render(row[1]))
	}
	lines = append(lines, "", r.dim("🕐 "+v.ObservedAt.Format("2006-01-02 15:04:05")))

	details := r.lg.NewStyle().Padding(0, 2)
	fmt.Fprintln(r.out, r.panel("Details", "yellow", details, lipgloss.JoinVertical(lipgloss.Left, lines...)))
	fmt.Fprintln(r.out)
}

// Forecast draws the multi-day forecast table.
func (r *Renderer) Forecast(v *display.ForecastView) {
	cell := r.lg.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.style("cyan", false)).
		Headers("Date", "Weather", "High/Low", "Details").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Bold(true).Align(lipgloss.Center)
			case col == 3:
				return cell
			default:
				return cell.Align(lipgloss.Center)
			}
		})

	for _, d := range v.Entries {
		highLow := r.style(d.MaxBucket.Color(), true).Render(fmt.Sprintf("%.0f°", d.MaxTemp)) +
			r.dim(" / ") +
			r.style(d.MinBucket.Color(), true).Render(fmt.Sprintf("%.0f°", d.MinTemp))

		t.Row(
			r.style("cyan", true).Render(d.Label),
			d.Icon+" "+d.Description,
			highLow,
			r.dim(fmt.Sprintf("💧 %d%%  🌬️ %.1f%s", d.AvgHumidity, d.AvgWindSpeed, v.Labels.Speed)),
		)
	}

	body := t.Render()
	title := r.style("cyan", true).
		Width(lipgloss.Width(body)).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("%d-Day Forecast for %s, %s", v.Days, v.City, v.Country))

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, title)
	fmt.Fprintln(r.out, body)
	fmt.Fprintln(r.out)
}
