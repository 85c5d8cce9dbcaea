package model

import (
	"errors"
	"fmt"
)

var ErrInvalidSpecialKind = errors.New("model: invalid special task kind")

type SpecialKind string

const (
	SpecialWorkerApprentice SpecialKind = "workerApprentice"
	SpecialLabAssistant     SpecialKind = "labAssistant"
)

// SpecialKinds lists every kind in ledger evaluation order.
func SpecialKinds() []SpecialKind {
	return []SpecialKind{SpecialWorkerApprentice, SpecialLabAssistant}
}

func (k SpecialKind) IsValid() bool {
	switch k {
	case SpecialWorkerApprentice, SpecialLabAssistant:
		return true
	default:
		return false
	}
}

// Section is the area whose tasks the special task may target.
func (k SpecialKind) Section() Section {
	if k == SpecialLabAssistant {
		return SectionLaboratory
	}
	return SectionHomeVillage
}

// SpecialTask shortens one designated task by Level hours a day once
// StartTime has passed.
type SpecialTask struct {
	Level        int       `json:"level"`
	StartTime    TimeOfDay `json:"startTime"`
	TargetTaskID string    `json:"targetTaskId,omitempty"`
}

type SpecialTasks struct {
	WorkerApprentice SpecialTask `json:"workerApprentice"`
	LabAssistant     SpecialTask `json:"labAssistant"`
}

func (s *SpecialTasks) Get(kind SpecialKind) (*SpecialTask, error) {
	switch kind {
	case SpecialWorkerApprentice:
		return &s.WorkerApprentice, nil
	case SpecialLabAssistant:
		return &s.LabAssistant, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpecialKind, kind)
	}
}

// Account is a configured game identity and all of its mutable task data.
type Account struct {
	Name              string             `json:"name"`
	Avatar            string             `json:"avatar"`
	Tasks             []Task             `json:"tasks"`
	Levels            map[Section]string `json:"levels"`
	WorkerCounts      map[Section]int    `json:"workerCounts"`
	CollapsedSections map[string]bool    `json:"collapsedSections"`
	SpecialTasks      SpecialTasks       `json:"specialTasks"`
}

func NewAccount(name, avatar string) *Account {
	a := &Account{Name: name, Avatar: avatar}
	a.EnsureMaps()
	return a
}

// EnsureMaps fills nil maps left by older or hand-edited data.
func (a *Account) EnsureMaps() {
	if a.Tasks == nil {
		a.Tasks = []Task{}
	}
	if a.Levels == nil {
		a.Levels = map[Section]string{}
	}
	if a.WorkerCounts == nil {
		a.WorkerCounts = map[Section]int{}
	}
	if a.CollapsedSections == nil {
		a.CollapsedSections = map[string]bool{}
	}
}

func (a *Account) FindTask(id string) (*Task, bool) {
	for i := range a.Tasks {
		if a.Tasks[i].ID == id {
			return &a.Tasks[i], true
		}
	}
	return nil, false
}

func (a *Account) FindSlot(section Section, worker int) (*Task, bool) {
	for i := range a.Tasks {
		if a.Tasks[i].Section == section && a.Tasks[i].Worker == worker {
			return &a.Tasks[i], true
		}
	}
	return nil, false
}

// RemoveTask drops the task and clears special-task pointers to it.
func (a *Account) RemoveTask(id string) bool {
	for i := range a.Tasks {
		if a.Tasks[i].ID != id {
			continue
		}
		a.Tasks = append(a.Tasks[:i], a.Tasks[i+1:]...)
		for _, kind := range SpecialKinds() {
			st, _ := a.SpecialTasks.Get(kind)
			if st.TargetTaskID == id {
				st.TargetTaskID = ""
			}
		}
		return true
	}
	return false
}

// AccountConfig is the static identity supplied at startup.
type AccountConfig struct {
	Name   string
	Avatar string
}
