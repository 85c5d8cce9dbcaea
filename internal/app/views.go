package app

import (
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
	"github.com/sandeepkv93/villageclock/internal/registry"
)

type TaskView struct {
	Task         model.Task
	SectionTitle string
	Projection   countdown.Projection
	Progress     float64
}

type SectionView struct {
	Config    model.SectionConfig
	Level     string
	Workers   int
	Collapsed bool
	Tasks     []TaskView
}

type SpecialView struct {
	Kind        model.SpecialKind
	Task        model.SpecialTask
	TargetLabel string
}

type AccountView struct {
	Name     string
	Avatar   string
	Sections []SectionView
	Specials []SpecialView
}

// AccountTasks lists the account's tasks in section order, refreshing
// each task's cached completion text.
func (a *App) AccountTasks(name string) ([]TaskView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, err := a.registryLocked(name)
	if err != nil {
		return nil, err
	}
	r.Refresh()
	titles := model.SectionIndex(a.opts.Sections)
	tasks := r.ListByAccount()
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, a.taskView(r, t, titles))
	}
	return out, nil
}

func (a *App) AccountView(name string) (AccountView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, err := a.registryLocked(name)
	if err != nil {
		return AccountView{}, err
	}
	r.Refresh()
	acc := r.Account()
	titles := model.SectionIndex(a.opts.Sections)

	view := AccountView{Name: acc.Name, Avatar: acc.Avatar}
	for _, sec := range a.opts.Sections {
		sv := SectionView{
			Config:    sec,
			Level:     r.Level(sec.ID),
			Workers:   r.SlotCount(sec.ID),
			Collapsed: acc.CollapsedSections[string(sec.ID)],
		}
		for _, t := range r.ListBySection(sec.ID) {
			sv.Tasks = append(sv.Tasks, a.taskView(r, t, titles))
		}
		view.Sections = append(view.Sections, sv)
	}
	for _, kind := range model.SpecialKinds() {
		st, _ := acc.SpecialTasks.Get(kind)
		sv := SpecialView{Kind: kind, Task: *st}
		if t, ok := acc.FindTask(st.TargetTaskID); ok {
			sv.TargetLabel = t.Label
		}
		view.Specials = append(view.Specials, sv)
	}
	return view, nil
}

func (a *App) taskView(r *registry.Registry, t model.Task, titles map[model.Section]model.SectionConfig) TaskView {
	title := titles[t.Section].Title
	if title == "" {
		title = string(t.Section)
	}
	return TaskView{
		Task:         t,
		SectionTitle: title,
		Projection:   r.Project(t),
		Progress:     countdown.Progress(t.EntryTimestamp, t.Duration.TotalMinutes(), t.TotalDeductedMinutes, a.clock.Now()),
	}
}
