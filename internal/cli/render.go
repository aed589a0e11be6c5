package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Freeeeeet/lesson_scheduler/internal/calendar"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

const (
	cellWidth  = 11
	clockWidth = 7
)

var (
	colorHeader  = color.New(color.Bold)
	colorMuted   = color.New(color.FgWhite, color.Faint)
	colorSuccess = color.New(color.FgGreen)

	cellColors = map[calendar.CellStatus]*color.Color{
		calendar.CellUnavailable:    colorMuted,
		calendar.CellBooked:         color.New(color.FgRed),
		calendar.CellTooClose:       color.New(color.FgYellow),
		calendar.CellOtherPartyBusy: color.New(color.FgMagenta),
		calendar.CellSelectable:     color.New(color.FgGreen),
		calendar.CellSelected:       color.New(color.FgCyan, color.Bold),
	}

	cellLabels = map[calendar.CellStatus]string{
		calendar.CellUnavailable:    "·",
		calendar.CellBooked:         "booked",
		calendar.CellTooClose:       "too close",
		calendar.CellOtherPartyBusy: "busy",
		calendar.CellSelectable:     "free",
		calendar.CellSelected:       "[selected]",
	}
)

// DisableColor disables color output.
func DisableColor() {
	color.NoColor = true
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatSuccess(s string) string {
	return colorSuccess.Sprint(s)
}

// PrintWeekGrid печатает сетку: строки слоты, столбцы дни
func PrintWeekGrid(w io.Writer, grid *calendar.WeekGrid) {
	end := grid.Start.AddDate(0, 0, calendar.DaysInWeek-1)
	header := fmt.Sprintf("WEEK %+d: %s - %s", grid.WeekOffset,
		grid.Start.Format("Mon Jan 2"), end.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))

	if len(grid.Slots) == 0 {
		fmt.Fprintln(w, "  No time slots configured.")
		return
	}

	width := clockWidth + calendar.DaysInWeek*cellWidth
	fmt.Fprintln(w, strings.Repeat("─", width))

	fmt.Fprintf(w, "%-*s", clockWidth, "")
	for _, day := range grid.Days {
		fmt.Fprint(w, formatHeader(pad(day.Format("Mon 02.01"), cellWidth)))
	}
	fmt.Fprintln(w)

	for s, slot := range grid.Slots {
		fmt.Fprintf(w, "%-*s", clockWidth, slot.StartTime)
		for d := 0; d < calendar.DaysInWeek; d++ {
			cell, ok := grid.Cell(d, s)
			if !ok {
				fmt.Fprint(w, pad("", cellWidth))
				continue
			}
			fmt.Fprint(w, formatCell(cell))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", width))
	printLegend(w, grid.Counts())
}

func formatCell(cell calendar.Cell) string {
	label := cellLabels[cell.Status]
	if cell.Availability != nil {
		switch cell.Status {
		case calendar.CellSelectable:
			label = fmt.Sprintf("free #%d", cell.Availability.ID)
		case calendar.CellSelected:
			label = fmt.Sprintf("[#%d]", cell.Availability.ID)
		}
	}

	// Выравниваем до раскраски: escape-коды ломают ширину
	return cellColors[cell.Status].Sprint(pad(label, cellWidth))
}

func printLegend(w io.Writer, counts map[calendar.CellStatus]int) {
	parts := make([]string, 0, len(calendar.AllCellStatuses))
	for _, status := range calendar.AllCellStatuses {
		parts = append(parts, cellColors[status].Sprintf("%s %s: %d", cellLabels[status], status, counts[status]))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  "))
}

// PrintAvailabilities печатает записи Availability по одной в строке
func PrintAvailabilities(w io.Writer, avails []*model.Availability) {
	if len(avails) == 0 {
		fmt.Fprintln(w, "No eligible slots.")
		return
	}

	fmt.Fprintf(w, "  %s\n", formatHeader(fmt.Sprintf("%-6s %-17s %-13s %s", "ID", "START", "SLOT", "STATUS")))
	for _, a := range avails {
		slot := "-"
		if a.Slot != nil {
			slot = a.Slot.StartTime
			if a.Slot.EndTime != "" {
				slot += "-" + a.Slot.EndTime
			}
		}
		fmt.Fprintf(w, "  %-6d %-17s %-13s %s\n", a.ID, a.StartDate.Format("2006-01-02 15:04"), slot, a.Status)
	}
}

// PrintChangeRequests печатает заявки таблицей
func PrintChangeRequests(w io.Writer, requests []*model.ScheduleChangeRequest) {
	if len(requests) == 0 {
		fmt.Fprintln(w, "No change requests.")
		return
	}

	fmt.Fprintf(w, "  %s\n", formatHeader(fmt.Sprintf("%-6s %-9s %-10s %-9s %-24s %s", "ID", "SCHEDULE", "STATUS", "MOVE", "FROM", "REASON")))
	for _, r := range requests {
		reason := ""
		if r.Reason != nil {
			reason = *r.Reason
		}
		move := fmt.Sprintf("%d→%d", r.OldAvailabilityID, r.NewAvailabilityID)
		fmt.Fprintf(w, "  %-6d %-9d %-10s %-9s %-24s %s\n", r.ID, r.ScheduleID, r.Status, move, r.RequesterEmail, reason)
	}
}

// pad дополняет пробелами до width символов (по рунам)
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width-1]) + " "
	}
	return s + strings.Repeat(" ", width-n)
}
