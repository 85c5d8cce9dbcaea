package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/villageclock/internal/app"
	"github.com/sandeepkv93/villageclock/internal/clock"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
	"github.com/sandeepkv93/villageclock/internal/registry"
	"github.com/sandeepkv93/villageclock/internal/storage"
)

func setupBoundApp(t *testing.T) (*app.App, *clock.Manual) {
	t.Helper()
	store, err := storage.OpenFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	clk := clock.NewManual(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC))
	a := app.New(app.Options{
		Accounts: []model.AccountConfig{{Name: "main"}},
		Sections: model.DefaultSections(),
		Policy:   countdown.DisplaySameDay,
	}, store, clk, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return a, clk
}

func mustRun(t *testing.T, a *app.App, line string) Result {
	t.Helper()
	res, err := Run(context.Background(), a, line)
	if err != nil {
		t.Fatalf("run %q: %v", line, err)
	}
	return res
}

func TestRunDrivesApp(t *testing.T) {
	a, clk := setupBoundApp(t)

	mustRun(t, a, "workers main lab 1")
	res := mustRun(t, a, "label main lab 1 Dragon")
	if !strings.HasPrefix(res.Message, "created task") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	res = mustRun(t, a, "duration main lab 1 0-3-0")
	if !strings.Contains(res.Message, "completes 12:00") {
		t.Fatalf("unexpected message: %q", res.Message)
	}

	tasks, err := a.AccountTasks("main")
	if err != nil || len(tasks) != 1 {
		t.Fatalf("tasks: %+v %v", tasks, err)
	}
	id := tasks[0].Task.ID

	mustRun(t, a, "special main lab level 1")
	mustRun(t, a, "special main lab start 10:00")
	mustRun(t, a, "special main lab target "+id)

	clk.Set(time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC))
	res = mustRun(t, a, "check")
	if res.Message != "applied 1 deductions (60 minutes)" {
		t.Fatalf("unexpected check message: %q", res.Message)
	}
	res = mustRun(t, a, "check")
	if res.Message != "no deductions due" {
		t.Fatalf("unexpected second check message: %q", res.Message)
	}

	tasks, _ = a.AccountTasks("main")
	if tasks[0].Projection.DisplayText != "11:00" {
		t.Fatalf("deduction not reflected: %+v", tasks[0].Projection)
	}

	mustRun(t, a, "special main lab target")
	view, _ := a.AccountView("main")
	if view.Specials[1].Task.TargetTaskID != "" {
		t.Fatalf("target not cleared: %+v", view.Specials[1])
	}

	res = mustRun(t, a, "delete main "+id)
	if res.Message != "deleted "+id {
		t.Fatalf("unexpected delete message: %q", res.Message)
	}
}

func TestRunExportImportRoundTrip(t *testing.T) {
	a, _ := setupBoundApp(t)
	mustRun(t, a, "workers main home 2")
	mustRun(t, a, "duration main home 2 1-0-0")

	path := filepath.Join(t.TempDir(), "out", "snapshot.json")
	mustRun(t, a, "export "+path)

	tasks, _ := a.AccountTasks("main")
	if _, err := a.DeleteTask(context.Background(), "main", tasks[0].Task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	mustRun(t, a, "import "+path)
	tasks, _ = a.AccountTasks("main")
	if len(tasks) != 1 || tasks[0].Task.Duration.Days != 1 {
		t.Fatalf("import did not restore: %+v", tasks)
	}
}

func TestRunSurfacesDomainErrors(t *testing.T) {
	a, _ := setupBoundApp(t)
	if _, err := Run(context.Background(), a, "workers ghost lab 1"); !errors.Is(err, app.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
	mustRun(t, a, "workers main lab 1")
	mustRun(t, a, "label main lab 1 Dragon")
	tasks, _ := a.AccountTasks("main")
	if _, err := Run(context.Background(), a, "special main apprentice target "+tasks[0].Task.ID); !errors.Is(err, registry.ErrTargetSection) {
		t.Fatalf("expected ErrTargetSection, got %v", err)
	}
	if _, err := Run(context.Background(), a, "special main apprentice start 7pm"); !errors.Is(err, model.ErrInvalidTimeOfDay) {
		t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
	}
	res := mustRun(t, a, "label main lab 5 Ghost slot")
	if !strings.HasPrefix(res.Message, "no change") {
		t.Fatalf("out of range worker should be a no-op, got %q", res.Message)
	}
}
