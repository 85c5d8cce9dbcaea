package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/villageclock/internal/clock"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
)

func setupRegistry(t *testing.T) (*Registry, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC))
	acc := model.NewAccount("main", "avatars/main.png")
	r := New(acc, model.DefaultSections(), clk, countdown.DisplayFull)
	if _, ok := r.SetWorkerCount(model.SectionHomeVillage, 5); !ok {
		t.Fatal("set worker count failed")
	}
	if _, ok := r.SetWorkerCount(model.SectionLaboratory, 1); !ok {
		t.Fatal("set worker count failed")
	}
	return r, clk
}

func TestUpsertCreatesLazily(t *testing.T) {
	r, _ := setupRegistry(t)

	ch, err := r.Upsert(model.SectionHomeVillage, 1, Label("   "))
	if err != nil || ch.Applied() {
		t.Fatalf("expected blank label to be ignored, got %+v %v", ch, err)
	}
	if len(r.ListByAccount()) != 0 {
		t.Fatal("expected no tasks")
	}

	ch, err = r.Upsert(model.SectionHomeVillage, 1, Label("Town hall 14"))
	if err != nil || !ch.Created {
		t.Fatalf("expected created task, got %+v %v", ch, err)
	}
	if ch.Task.ID == "" || ch.Task.EntryTimestamp != nil {
		t.Fatalf("expected id and no anchor for label-only task, got %+v", ch.Task)
	}
	if ch.Task.Completion != countdown.NotScheduledText {
		t.Fatalf("expected not-scheduled completion text, got %q", ch.Task.Completion)
	}
}

func TestUpsertReanchorScenario(t *testing.T) {
	r, clk := setupRegistry(t)
	start := clk.Now()

	ch, _ := r.Upsert(model.SectionHomeVillage, 2, Duration("1-0-0"))
	if !ch.Created || !ch.Reanchored || !ch.Task.EntryTimestamp.Equal(start) {
		t.Fatalf("expected anchored create, got %+v", ch)
	}
	id := ch.Task.ID

	clk.Advance(3 * time.Hour)
	before := r.Project(ch.Task)
	ch, _ = r.Upsert(model.SectionHomeVillage, 2, Label("Cannon 20"))
	if ch.Reanchored || !ch.Task.EntryTimestamp.Equal(start) {
		t.Fatalf("label edit must not move the anchor, got %+v", ch.Task)
	}
	after := r.Project(ch.Task)
	if before.RemainingMinutes != after.RemainingMinutes || !before.CompletionAt.Equal(*after.CompletionAt) {
		t.Fatalf("label edit changed remaining time: %+v vs %+v", before, after)
	}

	clk.Advance(time.Hour)
	ch, _ = r.Upsert(model.SectionHomeVillage, 2, Duration("0-2-0"))
	if !ch.Reanchored || !ch.Task.EntryTimestamp.Equal(clk.Now()) {
		t.Fatalf("duration edit must re-anchor to now, got %+v", ch.Task)
	}
	if ch.Task.ID != id {
		t.Fatalf("task id changed on update: %s -> %s", id, ch.Task.ID)
	}
	if p := r.Project(ch.Task); p.RemainingMinutes != 120 {
		t.Fatalf("expected fresh 120 minutes, got %d", p.RemainingMinutes)
	}
}

func TestUpsertRemovesBlankRow(t *testing.T) {
	r, _ := setupRegistry(t)
	r.Upsert(model.SectionHomeVillage, 3, Input{Label: ptr("Wall"), Duration: ptr("0-1-0")})

	ch, _ := r.Upsert(model.SectionHomeVillage, 3, Label(""))
	if ch.Removed {
		t.Fatal("row with duration must survive a cleared label")
	}
	ch, _ = r.Upsert(model.SectionHomeVillage, 3, Duration(""))
	if !ch.Removed {
		t.Fatalf("expected removal once both fields are empty, got %+v", ch)
	}
	if len(r.ListBySection(model.SectionHomeVillage)) != 0 {
		t.Fatal("expected empty section")
	}
}

func TestUpsertIgnoresUnconfiguredSlots(t *testing.T) {
	r, _ := setupRegistry(t)
	cases := []struct {
		section model.Section
		worker  int
	}{
		{model.Section("moon-base"), 1},
		{model.SectionPetHouse, 1},
		{model.SectionHomeVillage, 0},
		{model.SectionHomeVillage, 6},
		{model.SectionLaboratory, 2},
	}
	for _, tc := range cases {
		ch, err := r.Upsert(tc.section, tc.worker, Label("x"))
		if err != nil || ch.Applied() {
			t.Fatalf("expected no-op for %s/%d, got %+v %v", tc.section, tc.worker, ch, err)
		}
	}
}

func TestSetWorkerCountClamps(t *testing.T) {
	r, _ := setupRegistry(t)
	if n, _ := r.SetWorkerCount(model.SectionPetHouse, 12); n != model.MaxWorkers {
		t.Fatalf("expected clamp to %d, got %d", model.MaxWorkers, n)
	}
	if n, _ := r.SetWorkerCount(model.SectionPetHouse, -1); n != 0 {
		t.Fatalf("expected clamp to 0, got %d", n)
	}
	if _, ok := r.SetWorkerCount(model.Section("moon-base"), 2); ok {
		t.Fatal("expected unknown section rejected")
	}
}

func TestDeleteClearsSpecialTarget(t *testing.T) {
	r, _ := setupRegistry(t)
	ch, _ := r.Upsert(model.SectionLaboratory, 1, Duration("3-0-0"))
	if err := r.SetSpecialTarget(model.SpecialLabAssistant, ch.Task.ID); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if !r.Delete(ch.Task.ID) {
		t.Fatal("expected delete to succeed")
	}
	if got := r.Account().SpecialTasks.LabAssistant.TargetTaskID; got != "" {
		t.Fatalf("expected dangling target cleared, got %q", got)
	}
	if r.Delete(ch.Task.ID) {
		t.Fatal("expected second delete to report false")
	}
}

func TestSetSpecialTargetValidation(t *testing.T) {
	r, _ := setupRegistry(t)
	lab, _ := r.Upsert(model.SectionLaboratory, 1, Duration("3-0-0"))
	home, _ := r.Upsert(model.SectionHomeVillage, 1, Duration("1-0-0"))

	if err := r.SetSpecialTarget(model.SpecialWorkerApprentice, lab.Task.ID); !errors.Is(err, ErrTargetSection) {
		t.Fatalf("expected ErrTargetSection, got %v", err)
	}
	if err := r.SetSpecialTarget(model.SpecialWorkerApprentice, "nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := r.SetSpecialTarget(model.SpecialWorkerApprentice, home.Task.ID); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if err := r.SetSpecialLevel(model.SpecialWorkerApprentice, -2); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
	if err := r.SetSpecialStartTime(model.SpecialWorkerApprentice, "25:00"); !errors.Is(err, model.ErrInvalidTimeOfDay) {
		t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
	}
	if err := r.SetSpecialStartTime(model.SpecialKind("x"), "10:00"); !errors.Is(err, model.ErrInvalidSpecialKind) {
		t.Fatalf("expected ErrInvalidSpecialKind, got %v", err)
	}
}

func TestListByAccountOrdering(t *testing.T) {
	r, _ := setupRegistry(t)
	r.Upsert(model.SectionLaboratory, 1, Label("lab"))
	r.Upsert(model.SectionHomeVillage, 3, Label("third"))
	r.Upsert(model.SectionHomeVillage, 1, Label("first"))

	got := r.ListByAccount()
	want := []string{"first", "third", "lab"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Label != want[i] {
			t.Fatalf("position %d: got %q want %q", i, got[i].Label, want[i])
		}
	}
}

func TestTaskIDStable(t *testing.T) {
	a := TaskID("main", model.SectionLaboratory, 1, 42)
	if a != TaskID("main", model.SectionLaboratory, 1, 42) {
		t.Fatal("expected deterministic id")
	}
	if a == TaskID("main", model.SectionLaboratory, 2, 42) {
		t.Fatal("expected worker to change the id")
	}
}

func TestLevelFallsBackToDefault(t *testing.T) {
	r, _ := setupRegistry(t)
	if got := r.Level(model.SectionPetHouse); got != "1" {
		t.Fatalf("expected default level 1, got %q", got)
	}
	r.SetLevel(model.SectionPetHouse, " 3 ")
	if got := r.Level(model.SectionPetHouse); got != "3" {
		t.Fatalf("expected stored level 3, got %q", got)
	}
}

func ptr(s string) *string { return &s }
