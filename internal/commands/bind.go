package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sandeepkv93/villageclock/internal/app"
	"github.com/sandeepkv93/villageclock/internal/registry"
)

// Bind wires every command to a.
func Bind(ctx context.Context, a *app.App) Handlers {
	return Handlers{
		Label: func(args LabelArgs) (Result, error) {
			ch, err := a.UpsertTask(ctx, args.Account, args.Section, args.Worker, registry.Label(args.Text))
			if err != nil {
				return Result{}, err
			}
			return Result{Message: describeChange(args.Slot, ch)}, nil
		},
		Duration: func(args DurationArgs) (Result, error) {
			ch, err := a.UpsertTask(ctx, args.Account, args.Section, args.Worker, registry.Duration(args.Value))
			if err != nil {
				return Result{}, err
			}
			msg := describeChange(args.Slot, ch)
			if ch.Task.Completion != "" && !ch.Removed {
				msg += ", completes " + ch.Task.Completion
			}
			return Result{Message: msg}, nil
		},
		Delete: func(args DeleteArgs) (Result, error) {
			removed, err := a.DeleteTask(ctx, args.Account, args.TaskID)
			if err != nil {
				return Result{}, err
			}
			if !removed {
				return Result{Message: fmt.Sprintf("no task %s in %s", args.TaskID, args.Account)}, nil
			}
			return Result{Message: fmt.Sprintf("deleted %s", args.TaskID)}, nil
		},
		Workers: func(args WorkersArgs) (Result, error) {
			n, err := a.SetWorkerCount(ctx, args.Account, args.Section, args.Count)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("%s %s has %d workers", args.Account, args.Section, n)}, nil
		},
		Level: func(args LevelArgs) (Result, error) {
			if err := a.SetLevel(ctx, args.Account, args.Section, args.Label); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("%s %s level set to %s", args.Account, args.Section, strings.TrimSpace(args.Label))}, nil
		},
		Special: func(args SpecialArgs) (Result, error) {
			var err error
			switch args.Field {
			case FieldLevel:
				level, convErr := strconv.Atoi(args.Value)
				if convErr != nil {
					return Result{}, invalid("special level must be a number, got %q", args.Value)
				}
				err = a.SetSpecialLevel(ctx, args.Account, args.Kind, level)
			case FieldStart:
				err = a.SetSpecialStartTime(ctx, args.Account, args.Kind, args.Value)
			case FieldTarget:
				err = a.SetSpecialTarget(ctx, args.Account, args.Kind, args.Value)
			}
			if err != nil {
				return Result{}, err
			}
			if args.Field == FieldTarget && args.Value == "" {
				return Result{Message: fmt.Sprintf("%s %s target cleared", args.Account, args.Kind)}, nil
			}
			return Result{Message: fmt.Sprintf("%s %s %s set to %s", args.Account, args.Kind, args.Field, args.Value)}, nil
		},
		Check: func() (Result, error) {
			res, err := a.CheckDeductions(ctx)
			if err != nil {
				return Result{}, err
			}
			if !res.Dirty() {
				return Result{Message: "no deductions due"}, nil
			}
			return Result{Message: fmt.Sprintf("applied %d deductions (%d minutes)", len(res.Applied), res.TotalMinutes())}, nil
		},
		Export: func(args PathArgs) (Result, error) {
			data, err := a.Export(ctx)
			if err != nil {
				return Result{}, err
			}
			if err := writeFileAtomic(args.Path, data); err != nil {
				return Result{}, fmt.Errorf("write export: %w", err)
			}
			return Result{Message: fmt.Sprintf("exported to %s", args.Path)}, nil
		},
		Import: func(args PathArgs) (Result, error) {
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return Result{}, fmt.Errorf("read import: %w", err)
			}
			if err := a.Import(ctx, data); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("imported %s", args.Path)}, nil
		},
	}
}

// Run parses and executes one command line against a.
func Run(ctx context.Context, a *app.App, line string) (Result, error) {
	cmd, err := Parse(line)
	if err != nil {
		return Result{}, err
	}
	return Execute(cmd, Bind(ctx, a))
}

func describeChange(slot Slot, ch registry.Change) string {
	where := fmt.Sprintf("%s %s #%d", slot.Account, slot.Section, slot.Worker)
	switch {
	case ch.Created:
		return "created task at " + where
	case ch.Removed:
		return "cleared " + where
	case ch.Updated:
		return "updated " + where
	default:
		return "no change at " + where
	}
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
