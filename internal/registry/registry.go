// Package registry is the per-account CRUD surface over worker-slot tasks.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sandeepkv93/villageclock/internal/clock"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
)

var (
	ErrTaskNotFound  = errors.New("registry: task not found")
	ErrTargetSection = errors.New("registry: target task is in the wrong section")
	ErrInvalidLevel  = errors.New("registry: invalid special task level")
)

var taskNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("villageclock:task"))

// TaskID derives a stable identifier from the slot and its creation instant.
func TaskID(account string, section model.Section, worker int, created int64) string {
	name := fmt.Sprintf("%s|%s|%d|%d", account, section, worker, created)
	return uuid.NewSHA1(taskNamespace, []byte(name)).String()
}

// Input carries the edited fields; nil means "not touched".
type Input struct {
	Label    *string
	Duration *string
}

func Label(s string) Input    { return Input{Label: &s} }
func Duration(s string) Input { return Input{Duration: &s} }

// Change reports what an Upsert did. The zero value means nothing happened.
type Change struct {
	Task       model.Task
	Created    bool
	Updated    bool
	Removed    bool
	Reanchored bool
}

func (c Change) Applied() bool { return c.Created || c.Updated || c.Removed }

type Registry struct {
	account  *model.Account
	sections []model.SectionConfig
	index    map[model.Section]model.SectionConfig
	clock    clock.Clock
	policy   countdown.DisplayPolicy
}

func New(account *model.Account, sections []model.SectionConfig, clk clock.Clock, policy countdown.DisplayPolicy) *Registry {
	account.EnsureMaps()
	return &Registry{
		account:  account,
		sections: sections,
		index:    model.SectionIndex(sections),
		clock:    clk,
		policy:   policy,
	}
}

func (r *Registry) Account() *model.Account { return r.account }

// SlotCount is the configured worker count for section, capped at model.MaxWorkers.
func (r *Registry) SlotCount(section model.Section) int {
	n := r.account.WorkerCounts[section]
	if n > model.MaxWorkers {
		return model.MaxWorkers
	}
	if n < 0 {
		return 0
	}
	return n
}

// Upsert applies a slot edit. Only a non-zero duration edit moves the
// anchor; a row left with neither label nor duration is removed.
// Unknown sections and unconfigured worker slots are ignored.
func (r *Registry) Upsert(section model.Section, worker int, in Input) (Change, error) {
	if _, ok := r.index[section]; !ok {
		return Change{}, nil
	}
	if worker < 1 || worker > r.SlotCount(section) {
		return Change{}, nil
	}

	now := r.clock.Now()
	existing, found := r.account.FindSlot(section, worker)
	next := model.Task{Section: section, Worker: worker, CreatedAt: now}
	if found {
		next = *existing
	}

	if in.Label != nil {
		next.Label = strings.TrimSpace(*in.Label)
	}
	reanchored := false
	if in.Duration != nil {
		next.Duration = model.ParseDuration(*in.Duration)
		if next.Duration.IsZero() {
			next.EntryTimestamp = nil
		} else {
			anchor := now
			next.EntryTimestamp = &anchor
			reanchored = true
		}
	}
	next.Completion = r.project(next).DisplayText

	if !found {
		if next.Blank() {
			return Change{}, nil
		}
		next.ID = TaskID(r.account.Name, section, worker, now.UnixNano())
		r.account.Tasks = append(r.account.Tasks, next)
		return Change{Task: next, Created: true, Reanchored: reanchored}, nil
	}
	if next.Blank() {
		r.account.RemoveTask(next.ID)
		return Change{Task: next, Removed: true}, nil
	}
	*existing = next
	return Change{Task: next, Updated: true, Reanchored: reanchored}, nil
}

// Delete removes the task and clears special-task pointers to it.
func (r *Registry) Delete(taskID string) bool {
	return r.account.RemoveTask(taskID)
}

func (r *Registry) Get(taskID string) (model.Task, bool) {
	t, ok := r.account.FindTask(taskID)
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

func (r *Registry) ListBySection(section model.Section) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range r.account.Tasks {
		if t.Section == section {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Worker < out[j].Worker })
	return out
}

// ListByAccount returns every task ordered by section order, then worker.
func (r *Registry) ListByAccount() []model.Task {
	rank := make(map[model.Section]int, len(r.sections))
	for i, s := range r.sections {
		rank[s.ID] = i
	}
	out := append([]model.Task(nil), r.account.Tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, okI := rank[out[i].Section]
		rj, okJ := rank[out[j].Section]
		if !okI {
			ri = len(r.sections)
		}
		if !okJ {
			rj = len(r.sections)
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Worker < out[j].Worker
	})
	return out
}

// Refresh overwrites every task's cached completion text.
func (r *Registry) Refresh() {
	for i := range r.account.Tasks {
		r.account.Tasks[i].Completion = r.project(r.account.Tasks[i]).DisplayText
	}
}

func (r *Registry) Project(t model.Task) countdown.Projection {
	return r.project(t)
}

func (r *Registry) project(t model.Task) countdown.Projection {
	return countdown.Project(t.EntryTimestamp, t.Duration.TotalMinutes(), t.TotalDeductedMinutes, r.clock.Now(), r.policy)
}

// SetWorkerCount stores the slot count clamped to 0..model.MaxWorkers.
func (r *Registry) SetWorkerCount(section model.Section, n int) (int, bool) {
	if _, ok := r.index[section]; !ok {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	if n > model.MaxWorkers {
		n = model.MaxWorkers
	}
	r.account.WorkerCounts[section] = n
	return n, true
}

func (r *Registry) SetLevel(section model.Section, label string) bool {
	if _, ok := r.index[section]; !ok {
		return false
	}
	r.account.Levels[section] = strings.TrimSpace(label)
	return true
}

// Level is the stored level label, falling back to the section default.
func (r *Registry) Level(section model.Section) string {
	if v := r.account.Levels[section]; v != "" {
		return v
	}
	return r.index[section].DefaultLevel
}

func (r *Registry) ToggleCollapsed(key string) bool {
	r.account.CollapsedSections[key] = !r.account.CollapsedSections[key]
	return r.account.CollapsedSections[key]
}

func (r *Registry) SetSpecialLevel(kind model.SpecialKind, level int) error {
	st, err := r.account.SpecialTasks.Get(kind)
	if err != nil {
		return err
	}
	if level < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	st.Level = level
	return nil
}

func (r *Registry) SetSpecialStartTime(kind model.SpecialKind, raw string) error {
	st, err := r.account.SpecialTasks.Get(kind)
	if err != nil {
		return err
	}
	tod, err := model.ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	st.StartTime = tod
	return nil
}

// SetSpecialTarget points kind at a task in the section it is bound to.
// Earlier deductions stay on their old target.
func (r *Registry) SetSpecialTarget(kind model.SpecialKind, taskID string) error {
	st, err := r.account.SpecialTasks.Get(kind)
	if err != nil {
		return err
	}
	task, ok := r.account.FindTask(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Section != kind.Section() {
		return fmt.Errorf("%w: %s is in %s, %s needs %s", ErrTargetSection, taskID, task.Section, kind, kind.Section())
	}
	st.TargetTaskID = task.ID
	return nil
}

func (r *Registry) ClearSpecialTarget(kind model.SpecialKind) error {
	st, err := r.account.SpecialTasks.Get(kind)
	if err != nil {
		return err
	}
	st.TargetTaskID = ""
	return nil
}
