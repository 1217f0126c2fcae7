package cli

import (
	"github.com/julianstephens/taskflow/internal/models"
)

type ScheduleCmd struct {
	Days   *int     `short:"d" help:"Number of days to plan (1-14, defaults to default_days)."`
	Window []string `short:"w" help:"Override a day's hours for this run, e.g. mon=09:00-12:00." sep:"none"`
	Off    []string `help:"Skip a weekday for this run." sep:","`
	JSON   bool     `help:"Print JSON."`
}

func (c *ScheduleCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	base, err := ctx.Service.GetWorkSchedule(background(), ctx.UserID)
	if err != nil {
		return err
	}
	overrides, err := buildOverrides(c.Window, c.Off, base)
	if err != nil {
		return err
	}

	days := ctx.Service.DefaultDays()
	if c.Days != nil {
		days = *c.Days
	}
	result, err := ctx.Service.GenerateSchedule(background(), ctx.UserID, overrides, days)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.out(), result)
	}
	renderSchedule(ctx.out(), result)
	return nil
}

type StatsCmd struct {
	JSON bool `help:"Print JSON."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	stats, err := ctx.Service.GetSchedulingStats(background(), ctx.UserID)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.out(), stats)
	}
	renderStats(ctx.out(), stats)
	return nil
}

type HoursShowCmd struct {
	JSON bool `help:"Print JSON."`
}

func (c *HoursShowCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	schedule, err := ctx.Service.GetWorkSchedule(background(), ctx.UserID)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.out(), schedule)
	}
	renderWorkSchedule(ctx.out(), schedule)
	return nil
}

type HoursSetCmd struct {
	Day   string `arg:"" help:"Weekday (monday or mon)."`
	Start string `short:"s" help:"Start time (HH:MM)."`
	End   string `short:"e" help:"End time (HH:MM)."`
	Off   bool   `help:"Stop working on this day."`
}

func (c *HoursSetCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	key, err := weekdayKey(c.Day)
	if err != nil {
		return err
	}
	current, err := ctx.Service.GetWorkSchedule(background(), ctx.UserID)
	if err != nil {
		return err
	}

	window := current[key]
	if c.Start != "" {
		window.Start = c.Start
	}
	if c.End != "" {
		window.End = c.End
	}
	window.Enabled = !c.Off

	saved, err := ctx.Service.SaveWorkSchedule(background(), ctx.UserID, models.WorkSchedule{key: window})
	if err != nil {
		return err
	}
	renderWorkSchedule(ctx.out(), saved)
	return nil
}
