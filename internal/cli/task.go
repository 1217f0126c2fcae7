package cli

import (
	"fmt"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/service"
)

type TaskAddCmd struct {
	Project string  `arg:"" help:"Project ID."`
	Name    string  `arg:"" help:"Task name."`
	Hours   float64 `short:"H" help:"Estimated hours (0.1-99.99)." required:""`
	Order   int     `short:"o" help:"Position in a sequential project (1 runs first)."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Order < 0 {
		return fmt.Errorf("order must be a positive integer")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	in := service.TaskInput{Name: c.Name, EstimatedHours: c.Hours}
	if c.Order > 0 {
		in.TaskOrder = models.IntPtr(c.Order)
	}

	task, err := ctx.Service.CreateTask(background(), c.Project, in)
	if err != nil {
		return err
	}

	blocks := len(ctx.Scheduler.ExpandTask(task, models.Project{}))
	ctx.printf("Added task: %s (%s), %d block(s) of up to %dh\n", task.Name, task.ID, blocks, constants.BlockHours)
	return nil
}

type TaskEditCmd struct {
	ID         string  `arg:"" help:"Task ID."`
	Name       string  `help:"New name."`
	Hours      float64 `short:"H" help:"New estimated hours."`
	Order      int     `short:"o" help:"New position in a sequential project."`
	ClearOrder bool    `help:"Remove the task's position."`
}

func (c *TaskEditCmd) Validate() error {
	if c.Order != 0 && c.ClearOrder {
		return fmt.Errorf("--order and --clear-order cannot be combined")
	}
	return nil
}

func (c *TaskEditCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	patch := service.TaskPatch{ClearOrder: c.ClearOrder}
	if c.Name != "" {
		patch.Name = &c.Name
	}
	if c.Hours != 0 {
		patch.EstimatedHours = &c.Hours
	}
	if c.Order != 0 {
		patch.TaskOrder = &c.Order
	}

	task, err := ctx.Service.UpdateTask(background(), c.ID, patch)
	if err != nil {
		return err
	}
	ctx.printf("Updated task: %s\n", task.Name)
	return nil
}

type TaskDoneCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskDoneCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	task, update, err := ctx.Service.CompleteTask(background(), c.ID)
	if err != nil {
		return err
	}

	ctx.println(doneStyle.Render("✓") + " Completed: " + task.Name)
	if update.NextTaskUnlocked != nil {
		ctx.printf("Next up: %s\n", update.NextTaskUnlocked.Name)
	}
	if update.ProjectCompleted {
		ctx.println("Project complete!")
	}
	return nil
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskDeleteCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if err := ctx.Service.DeleteTask(background(), c.ID); err != nil {
		return err
	}
	ctx.printf("Deleted task: %s\n", c.ID)
	return nil
}
