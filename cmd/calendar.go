package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/board"
	"github.com/clipworks/clipctl/internal/shared"
)

// Calendar prints a month of the planning board as a grid of due dates.
func (r *Runner) Calendar(ctx context.Context, cmd *cli.Command) error {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if arg := cmd.String("month"); arg != "" {
		parsed, err := time.Parse("2006-01", arg)
		if err != nil {
			return fmt.Errorf("%w: --month wants YYYY-MM, got %q", shared.ErrInvalidArgument, arg)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	if err := r.board.Refresh(ctx); err != nil {
		return err
	}
	grid := r.board.Month(year, month)

	r.writePlainHeader(fmt.Sprintf("%s %d", month, year))
	r.writePlain("  Sun   Mon   Tue   Wed   Thu   Fri   Sat\n")

	for _, week := range grid.Weeks {
		for _, day := range week {
			cell := fmt.Sprintf("%3d", day.Date.Day())
			if !day.InMonth {
				cell = "  ."
			}
			if len(day.Tasks) > 0 {
				cell += fmt.Sprintf("*%d", len(day.Tasks))
			}
			r.writePlain("%-6s", cell)
		}
		r.writePlain("\n")
	}

	// Itemize the due tasks under the grid.
	r.writePlain("\n")
	for _, week := range grid.Weeks {
		for _, day := range week {
			if !day.InMonth || len(day.Tasks) == 0 {
				continue
			}
			for _, task := range day.Tasks {
				label := ""
				for _, tag := range task.Tags {
					label += " " + board.TagStyle(tag).Render(tag)
				}
				r.writePlain("%s  #%d %s%s\n", day.Date.Format(board.DueDateLayout), task.ID, task.Title, label)
			}
		}
	}
	return nil
}

func calendarCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "Show board tasks on a monthly calendar",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "month", Aliases: []string{"m"}, Usage: "Month to show (YYYY-MM), defaults to now"},
		},
		Action: r.Calendar,
	}
}
