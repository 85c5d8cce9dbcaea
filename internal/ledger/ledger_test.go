package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sandeepkv93/villageclock/internal/model"
)

var loc = time.FixedZone("UTC+8", 8*3600)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, loc)
}

func labAccount(level int, start string) *model.Account {
	acc := model.NewAccount("main", "")
	anchor := at(1, 9, 0)
	acc.Tasks = append(acc.Tasks, model.Task{
		ID:             "lab-1",
		Section:        model.SectionLaboratory,
		Worker:         1,
		Label:          "Dragon 9",
		Duration:       model.Duration{Minutes: 3000},
		EntryTimestamp: &anchor,
		CreatedAt:      anchor,
	})
	tod, err := model.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	acc.SpecialTasks.LabAssistant = model.SpecialTask{Level: level, StartTime: tod, TargetTaskID: "lab-1"}
	return acc
}

func deducted(acc *model.Account) int {
	task, _ := acc.FindTask("lab-1")
	return task.TotalDeductedMinutes
}

func TestCheckThresholdScenario(t *testing.T) {
	acc := labAccount(2, "15:00")
	l := New()
	accounts := []*model.Account{acc}

	if res := l.Check(accounts, at(1, 14, 0)); res.Dirty() {
		t.Fatalf("expected no deduction before threshold, got %+v", res.Applied)
	}
	res := l.Check(accounts, at(1, 15, 30))
	if !res.Dirty() || res.TotalMinutes() != 120 {
		t.Fatalf("expected 120 minute deduction, got %+v", res.Applied)
	}
	if got := deducted(acc); got != 120 {
		t.Fatalf("expected 120 deducted, got %d", got)
	}
	if res := l.Check(accounts, at(1, 20, 0)); res.Dirty() {
		t.Fatalf("expected no further deduction the same day, got %+v", res.Applied)
	}
	if got := deducted(acc); got != 120 {
		t.Fatalf("expected deduction unchanged, got %d", got)
	}
	mark, ok := l.LastApplied("main", model.SpecialLabAssistant)
	if !ok || mark.Day != "2026-03-01" || mark.TaskID != "lab-1" {
		t.Fatalf("unexpected mark: %+v ok=%v", mark, ok)
	}
}

func TestCheckNextDayAndMultiDayGap(t *testing.T) {
	acc := labAccount(1, "00:00")
	l := New()
	accounts := []*model.Account{acc}

	l.Check(accounts, at(1, 10, 0))
	l.Check(accounts, at(2, 10, 0))
	if got := deducted(acc); got != 120 {
		t.Fatalf("expected two daily deductions, got %d", got)
	}

	// Three days away, one check: one day's worth only.
	l.Check(accounts, at(5, 10, 0))
	if got := deducted(acc); got != 180 {
		t.Fatalf("expected single application after gap, got %d", got)
	}
}

func TestCheckSkips(t *testing.T) {
	l := New()

	zero := labAccount(0, "00:00")
	if res := l.Check([]*model.Account{zero}, at(1, 12, 0)); res.Dirty() {
		t.Fatal("expected level 0 to be skipped")
	}

	untargeted := labAccount(3, "00:00")
	untargeted.SpecialTasks.LabAssistant.TargetTaskID = ""
	if res := l.Check([]*model.Account{untargeted}, at(1, 12, 0)); res.Dirty() {
		t.Fatal("expected unset target to be skipped")
	}

	dangling := labAccount(3, "00:00")
	dangling.SpecialTasks.LabAssistant.TargetTaskID = "gone"
	if res := l.Check([]*model.Account{dangling}, at(1, 12, 0)); res.Dirty() {
		t.Fatal("expected missing target to be skipped")
	}
	if _, ok := l.LastApplied("main", model.SpecialLabAssistant); ok {
		t.Fatal("skipped checks must not record a mark")
	}
}

func TestCheckRetargetSameDayDoesNotReapply(t *testing.T) {
	acc := labAccount(1, "00:00")
	anchor := at(1, 9, 0)
	acc.Tasks = append(acc.Tasks, model.Task{ID: "lab-2", Section: model.SectionLaboratory, Worker: 2, Duration: model.Duration{Days: 1}, EntryTimestamp: &anchor})
	l := New()
	l.Check([]*model.Account{acc}, at(1, 10, 0))

	acc.SpecialTasks.LabAssistant.TargetTaskID = "lab-2"
	if res := l.Check([]*model.Account{acc}, at(1, 11, 0)); res.Dirty() {
		t.Fatalf("expected retarget on the same day to wait, got %+v", res.Applied)
	}
	if res := l.Check([]*model.Account{acc}, at(2, 11, 0)); !res.Dirty() || res.Applied[0].TaskID != "lab-2" {
		t.Fatalf("expected next-day deduction on new target, got %+v", res.Applied)
	}
	if got := deducted(acc); got != 60 {
		t.Fatalf("expected old target deduction kept, got %d", got)
	}
}

func TestCheckMonotonicAcrossSequence(t *testing.T) {
	acc := labAccount(2, "15:00")
	acc.SpecialTasks.WorkerApprentice = model.SpecialTask{Level: 1, TargetTaskID: "lab-1"}
	l := New()
	prev := 0
	now := at(1, 0, 0)
	for i := 0; i < 200; i++ {
		now = now.Add(time.Duration(37+i%11) * time.Minute)
		if i == 120 {
			acc.SpecialTasks.LabAssistant.Level = 0
		}
		l.Check([]*model.Account{acc}, now)
		if got := deducted(acc); got < prev {
			t.Fatalf("deduction decreased at step %d: %d < %d", i, got, prev)
		} else {
			prev = got
		}
	}
	if prev == 0 {
		t.Fatal("expected some deductions over the sequence")
	}
}

func TestLedgerJSONPreventsReapply(t *testing.T) {
	acc := labAccount(2, "15:00")
	l := New()
	l.Check([]*model.Account{acc}, at(1, 16, 0))

	raw, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored := New()
	if err := json.Unmarshal(raw, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res := restored.Check([]*model.Account{acc}, at(1, 18, 0)); res.Dirty() {
		t.Fatalf("expected restored ledger to remember today, got %+v", res.Applied)
	}
	if got := deducted(acc); got != 120 {
		t.Fatalf("expected 120, got %d", got)
	}
}
