package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/taskflow/internal/config"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/scheduler"
	"github.com/julianstephens/taskflow/internal/service"
	"github.com/julianstephens/taskflow/internal/storage"
	"github.com/julianstephens/taskflow/internal/utils"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Service   *service.ScheduleService
	Config    *config.Config

	// SettingsPath is where Config was loaded from and is saved to.
	SettingsPath string
	UserID       string

	Out io.Writer
	In  io.Reader
}

// NewContext wires the scheduling service for store according to cfg.
func NewContext(store storage.Provider, cfg *config.Config, settingsPath string) (*Context, error) {
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	sched := scheduler.New()
	return &Context{
		Store:     store,
		Scheduler: sched,
		Service: service.New(store, sched,
			service.WithLocation(loc),
			service.WithBaseSchedule(cfg.BaseWorkSchedule()),
			service.WithDefaultDays(cfg.DefaultDays),
		),
		Config:       cfg,
		SettingsPath: settingsPath,
		UserID:       cfg.UserID,
		Out:          os.Stdout,
		In:           os.Stdin,
	}, nil
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// load opens storage; every command except init calls it first.
func (c *Context) load() error {
	return c.Store.Load()
}

func background() context.Context {
	return context.Background()
}

// parseWindowSpec parses "monday=09:00-12:00" into a weekday key and window.
func parseWindowSpec(spec string) (string, models.WorkWindow, error) {
	day, span, ok := strings.Cut(spec, "=")
	if !ok {
		return "", models.WorkWindow{}, fmt.Errorf("invalid window %q (want day=HH:MM-HH:MM)", spec)
	}
	key, err := weekdayKey(day)
	if err != nil {
		return "", models.WorkWindow{}, err
	}
	start, end, ok := strings.Cut(strings.TrimSpace(span), "-")
	if !ok {
		return "", models.WorkWindow{}, fmt.Errorf("invalid window %q (want day=HH:MM-HH:MM)", spec)
	}
	window := models.WorkWindow{Start: strings.TrimSpace(start), End: strings.TrimSpace(end), Enabled: true}
	if !utils.ValidateTimeFormat(window.Start) || !utils.ValidateTimeFormat(window.End) {
		return "", models.WorkWindow{}, fmt.Errorf("invalid window %q (times must be HH:MM)", spec)
	}
	return key, window, nil
}

// weekdayKey accepts full or three letter weekday names.
func weekdayKey(day string) (string, error) {
	wd, err := utils.ParseWeekday(day)
	if err != nil {
		return "", err
	}
	return models.WeekdayKey(wd), nil
}

// buildOverrides turns --window and --off flags into a partial schedule.
// base supplies the hours kept for days that are only switched off.
func buildOverrides(windows, off []string, base models.WorkSchedule) (models.WorkSchedule, error) {
	overrides := models.WorkSchedule{}
	for _, spec := range windows {
		key, window, err := parseWindowSpec(spec)
		if err != nil {
			return nil, err
		}
		overrides[key] = window
	}
	for _, day := range off {
		key, err := weekdayKey(day)
		if err != nil {
			return nil, err
		}
		window, ok := overrides[key]
		if !ok {
			window = base[key]
		}
		window.Enabled = false
		overrides[key] = window
	}
	return overrides, nil
}
