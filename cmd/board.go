package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/board"
	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// BoardList prints the planning board column by column.
func (r *Runner) BoardList(ctx context.Context, cmd *cli.Command) error {
	if err := r.board.Refresh(ctx); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(r.board.Tasks(), true)
	}

	for _, column := range models.BoardColumns {
		cards := r.board.Column(column)
		r.writePlainHeader(fmt.Sprintf("%s (%d)", column, len(cards)))
		for _, task := range cards {
			line := fmt.Sprintf("%4d  %s", task.ID, task.Title)
			if task.DueDate != "" {
				line += fmt.Sprintf("  due %s", task.DueDate)
			}
			if len(task.Tags) > 0 {
				labels := make([]string, len(task.Tags))
				for i, tag := range task.Tags {
					labels[i] = board.TagStyle(tag).Render(tag)
				}
				line += "  [" + strings.Join(labels, " ") + "]"
			}
			r.writePlain("%s\n", line)
		}
	}
	return nil
}

// BoardAdd creates a card.
func (r *Runner) BoardAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.board.Refresh(ctx); err != nil {
		return err
	}

	task := models.Task{
		Title:       cmd.StringArg("title"),
		Description: cmd.String("description"),
		Status:      models.TaskStatus(cmd.String("status")),
		DueDate:     cmd.String("due"),
		Tags:        cmd.StringSlice("tag"),
	}
	created, err := r.board.Create(ctx, task)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created task %d in %s\n", created.ID, created.Status)
}

// BoardMove shifts a card to another column.
func (r *Runner) BoardMove(ctx context.Context, cmd *cli.Command) error {
	if err := r.board.Refresh(ctx); err != nil {
		return err
	}

	taskID := int64(cmd.Int("id"))
	to := models.TaskStatus(cmd.String("to"))
	if err := r.board.Move(ctx, taskID, to); err != nil {
		return err
	}
	return r.writePlain("✓ Moved task %d to %s\n", taskID, to)
}

// BoardRemove deletes a card.
func (r *Runner) BoardRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.board.Refresh(ctx); err != nil {
		return err
	}

	taskID := int64(cmd.Int("id"))
	if err := r.board.Delete(ctx, taskID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted task %d\n", taskID)
}

// BoardTag attaches or detaches a tag on a card.
func (r *Runner) BoardTag(ctx context.Context, cmd *cli.Command) error {
	if err := r.board.Refresh(ctx); err != nil {
		return err
	}

	taskID := int64(cmd.Int("id"))
	tag := cmd.StringArg("tag")
	if tag == "" {
		return fmt.Errorf("%w: tag name", shared.ErrMissingArgument)
	}

	if cmd.Bool("remove") {
		if err := r.board.RemoveTag(ctx, taskID, tag); err != nil {
			return err
		}
		return r.writePlain("✓ Removed tag '%s' from task %d\n", tag, taskID)
	}

	if err := r.board.AddTag(ctx, taskID, tag); err != nil {
		return err
	}
	return r.writePlain("✓ Tagged task %d with %s\n", taskID, board.TagStyle(tag).Render(tag))
}

// BoardTags lists every tag, colored, or deletes one everywhere.
func (r *Runner) BoardTags(ctx context.Context, cmd *cli.Command) error {
	if err := r.board.Refresh(ctx); err != nil {
		return err
	}

	if name := cmd.String("delete"); name != "" {
		if err := r.board.DeleteTag(ctx, name); err != nil {
			return err
		}
		return r.writePlain("✓ Deleted tag '%s' from the board\n", name)
	}

	for _, tag := range r.board.Tags() {
		r.writePlain("%s\n", board.TagStyle(tag).Render(tag))
	}
	return nil
}

func boardCommand(r *Runner) *cli.Command {
	idFlag := &cli.IntFlag{Name: "id", Usage: "Task ID", Required: true}

	return &cli.Command{
		Name:  "board",
		Usage: "Manage the planning board",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the board column by column",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
				},
				Action: r.BoardList,
			},
			{
				Name:      "add",
				Usage:     "Create a task",
				ArgsUsage: "<title>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Task description"},
					&cli.StringFlag{Name: "status", Usage: "Column: unassigned, todo, in_progress, done", Value: "unassigned"},
					&cli.StringFlag{Name: "due", Usage: "Due date (YYYY-MM-DD)"},
					&cli.StringSliceFlag{Name: "tag", Usage: "Tag to attach (max 3, repeatable)"},
				},
				Action: r.BoardAdd,
			},
			{
				Name:  "move",
				Usage: "Move a task to another column",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{Name: "to", Usage: "Target column", Required: true},
				},
				Action: r.BoardMove,
			},
			{
				Name:   "rm",
				Usage:  "Delete a task",
				Flags:  []cli.Flag{idFlag},
				Action: r.BoardRemove,
			},
			{
				Name:      "tag",
				Usage:     "Attach or detach a tag on a task",
				ArgsUsage: "<tag>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "tag"},
				},
				Flags: []cli.Flag{
					idFlag,
					&cli.BoolFlag{Name: "remove", Usage: "Detach instead of attach"},
				},
				Action: r.BoardTag,
			},
			{
				Name:  "tags",
				Usage: "List tags, or delete one everywhere",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "delete", Usage: "Delete this tag from the board"},
				},
				Action: r.BoardTags,
			},
		},
	}
}
