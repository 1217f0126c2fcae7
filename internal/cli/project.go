package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/service"
)

type ProjectAddCmd struct {
	Name       string `arg:"" help:"Project name."`
	Priority   string `short:"p" help:"Priority (immediate|urgent|usual|if-you-have-time|do-whenever)." default:"usual"`
	Category   string `short:"c" help:"Category (professional|personal|home|social)." default:"personal"`
	Due        string `short:"d" help:"Due date (YYYY-MM-DD)."`
	Sequential bool   `short:"s" help:"Tasks must be done in order."`
}

func (c *ProjectAddCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	priority, err := models.ParsePriority(c.Priority)
	if err != nil {
		return err
	}
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return err
	}

	project, err := ctx.Service.CreateProject(background(), ctx.UserID, service.ProjectInput{
		Name:               c.Name,
		Priority:           priority,
		Category:           category,
		DueDate:            c.Due,
		HasSequentialTasks: c.Sequential,
	})
	if err != nil {
		return err
	}

	ctx.printf("Added project: %s (%s)\n", project.Name, project.ID)
	return nil
}

type ProjectListCmd struct {
	All  bool `short:"a" help:"Include completed tasks."`
	JSON bool `help:"Print JSON."`
}

func (c *ProjectListCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	projects, err := ctx.Service.ListProjects(background(), ctx.UserID)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.out(), projects)
	}
	renderProjects(ctx.out(), projects, c.All)
	return nil
}

type ProjectEditCmd struct {
	ID         string `arg:"" help:"Project ID."`
	Name       string `help:"New name."`
	Priority   string `short:"p" help:"New priority."`
	Category   string `short:"c" help:"New category."`
	Due        string `short:"d" help:"New due date (YYYY-MM-DD)."`
	ClearDue   bool   `help:"Remove the due date."`
	Sequential string `help:"Sequential mode (on|off)." enum:"on,off," default:""`
}

func (c *ProjectEditCmd) Validate() error {
	if c.Due != "" && c.ClearDue {
		return fmt.Errorf("--due and --clear-due cannot be combined")
	}
	return nil
}

func (c *ProjectEditCmd) patch() (service.ProjectPatch, error) {
	var patch service.ProjectPatch
	if c.Name != "" {
		patch.Name = &c.Name
	}
	if c.Priority != "" {
		p, err := models.ParsePriority(c.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if c.Category != "" {
		cat, err := models.ParseCategory(c.Category)
		if err != nil {
			return patch, err
		}
		patch.Category = &cat
	}
	if c.Due != "" {
		patch.DueDate = &c.Due
	}
	if c.ClearDue {
		empty := ""
		patch.DueDate = &empty
	}
	if c.Sequential != "" {
		on := c.Sequential == "on"
		patch.HasSequentialTasks = &on
	}
	return patch, nil
}

func (c *ProjectEditCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	patch, err := c.patch()
	if err != nil {
		return err
	}
	project, err := ctx.Service.UpdateProject(background(), c.ID, patch)
	if err != nil {
		return err
	}

	ctx.printf("Updated project: %s\n", project.Name)
	return nil
}

type ProjectDeleteCmd struct {
	ID  string `arg:"" help:"Project ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ProjectDeleteCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	project, err := ctx.Service.GetProject(background(), c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		prompt := fmt.Sprintf("Delete project %q and its %d task(s)?", project.Name, len(project.Tasks))
		ok, err := confirm(ctx, prompt)
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Service.DeleteProject(background(), c.ID); err != nil {
		return err
	}
	ctx.printf("Deleted project: %s\n", project.Name)
	return nil
}

// confirm asks a yes/no question on ctx.In. Anything but y/yes is no.
func confirm(ctx *Context, prompt string) (bool, error) {
	ctx.printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(ctx.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
