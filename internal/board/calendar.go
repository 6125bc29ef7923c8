package board

import (
	"time"

	"github.com/clipworks/clipctl/internal/models"
)

// DueDateLayout is the wire format of task due dates.
const DueDateLayout = "2006-01-02"

// Day is one cell of the calendar grid.
type Day struct {
	Date    time.Time
	InMonth bool
	Tasks   []models.Task
}

// MonthGrid is a six-week calendar view of one month. Weeks run Sunday
// through Saturday; cells outside the month carry the adjacent months' days
// so the grid is always full.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks [6][7]Day
}

// Month builds the calendar grid for the given month, placing every card
// with a parseable due date on its day.
func (e *Engine) Month(year int, month time.Month) MonthGrid {
	grid := MonthGrid{Year: year, Month: month}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	byDay := make(map[string][]models.Task)
	for _, task := range e.Tasks() {
		if task.DueDate == "" {
			continue
		}
		if _, err := time.Parse(DueDateLayout, task.DueDate); err != nil {
			continue
		}
		byDay[task.DueDate] = append(byDay[task.DueDate], task)
	}

	day := start
	for w := 0; w < 6; w++ {
		for d := 0; d < 7; d++ {
			grid.Weeks[w][d] = Day{
				Date:    day,
				InMonth: day.Month() == month,
				Tasks:   byDay[day.Format(DueDateLayout)],
			}
			day = day.AddDate(0, 0, 1)
		}
	}
	return grid
}
