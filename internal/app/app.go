// Package app owns the in-process state shared by the TUI and the CLI:
// every configured account, the deduction ledger, and the store they
// persist to.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/villageclock/internal/agenda"
	"github.com/sandeepkv93/villageclock/internal/clock"
	"github.com/sandeepkv93/villageclock/internal/config"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/ledger"
	"github.com/sandeepkv93/villageclock/internal/model"
	"github.com/sandeepkv93/villageclock/internal/registry"
	"github.com/sandeepkv93/villageclock/internal/scheduler"
	"github.com/sandeepkv93/villageclock/internal/snapshot"
	"github.com/sandeepkv93/villageclock/internal/storage"
)

const (
	StateKey  = "villageclock/state"
	LedgerKey = "villageclock/ledger"
)

var ErrUnknownAccount = errors.New("app: unknown account")

var deductionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("villageclock:deduction"))

type Options struct {
	Accounts      []model.AccountConfig
	Sections      []model.SectionConfig
	Horizon       time.Duration
	ClusterWindow time.Duration
	Policy        countdown.DisplayPolicy
}

func OptionsFromConfig(cfg config.RuntimeConfig) Options {
	return Options{
		Accounts:      cfg.Accounts,
		Sections:      cfg.Sections(),
		Horizon:       cfg.Horizon(),
		ClusterWindow: cfg.ClusterWindow(),
		Policy:        cfg.Display,
	}
}

type persistedState struct {
	Accounts []*model.Account `json:"accounts"`
}

type App struct {
	mu       sync.Mutex
	opts     Options
	store    storage.Store
	clock    clock.Clock
	logger   *slog.Logger
	accounts []*model.Account
	ledger   *ledger.Ledger
}

func New(opts Options, store storage.Store, clk clock.Clock, logger *slog.Logger) *App {
	if len(opts.Sections) == 0 {
		opts.Sections = model.DefaultSections()
	}
	if opts.Policy == "" {
		opts.Policy = countdown.DisplaySameDay
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		opts:   opts,
		store:  store,
		clock:  clk,
		logger: logger,
		ledger: ledger.New(),
	}
	a.accounts = a.reconcile(nil)
	return a
}

// Load restores accounts and the ledger from the store. Stored accounts
// that are no longer configured are dropped.
func (a *App) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var stored persistedState
	raw, ok, err := a.store.Load(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
	}

	l := ledger.New()
	raw, ok, err = a.store.Load(ctx, LedgerKey)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), l); err != nil {
			return fmt.Errorf("decode ledger: %w", err)
		}
	}

	a.accounts = a.reconcile(stored.Accounts)
	a.ledger = l
	a.refreshLocked()
	a.logger.Info("state loaded", slog.Int("accounts", len(a.accounts)), slog.Int("ledger_marks", len(l.Records())))
	return nil
}

func (a *App) reconcile(stored []*model.Account) []*model.Account {
	byName := make(map[string]*model.Account, len(stored))
	for _, acc := range stored {
		if acc != nil {
			byName[acc.Name] = acc
		}
	}
	out := make([]*model.Account, 0, len(a.opts.Accounts))
	for _, cfg := range a.opts.Accounts {
		acc, ok := byName[cfg.Name]
		if !ok {
			acc = model.NewAccount(cfg.Name, cfg.Avatar)
		}
		acc.Avatar = cfg.Avatar
		acc.EnsureMaps()
		for _, kind := range model.SpecialKinds() {
			st, _ := acc.SpecialTasks.Get(kind)
			if _, found := acc.FindTask(st.TargetTaskID); st.TargetTaskID != "" && !found {
				st.TargetTaskID = ""
			}
		}
		out = append(out, acc)
	}
	return out
}

func (a *App) Now() time.Time { return a.clock.Now() }

func (a *App) Options() Options { return a.opts }

func (a *App) AccountNames() []string {
	out := make([]string, 0, len(a.opts.Accounts))
	for _, cfg := range a.opts.Accounts {
		out = append(out, cfg.Name)
	}
	return out
}

func (a *App) registryLocked(name string) (*registry.Registry, error) {
	for _, acc := range a.accounts {
		if acc.Name == name {
			return registry.New(acc, a.opts.Sections, a.clock, a.opts.Policy), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, name)
}

// mutate runs fn against the named account and persists the state when
// fn reports a change.
func (a *App) mutate(ctx context.Context, name string, fn func(r *registry.Registry) (bool, error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, err := a.registryLocked(name)
	if err != nil {
		return err
	}
	changed, err := fn(r)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return a.saveStateLocked(ctx)
}

func (a *App) UpsertTask(ctx context.Context, account string, section model.Section, worker int, in registry.Input) (registry.Change, error) {
	var change registry.Change
	err := a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		var err error
		change, err = r.Upsert(section, worker, in)
		return change.Applied(), err
	})
	if err == nil && change.Applied() {
		a.logger.Debug("task upserted",
			slog.String("account", account),
			slog.String("task_id", change.Task.ID),
			slog.Bool("created", change.Created),
			slog.Bool("removed", change.Removed),
			slog.Bool("reanchored", change.Reanchored),
		)
	}
	return change, err
}

func (a *App) DeleteTask(ctx context.Context, account, taskID string) (bool, error) {
	var removed bool
	err := a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		removed = r.Delete(taskID)
		return removed, nil
	})
	return removed, err
}

func (a *App) SetWorkerCount(ctx context.Context, account string, section model.Section, n int) (int, error) {
	var stored int
	err := a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		v, ok := r.SetWorkerCount(section, n)
		if !ok {
			return false, fmt.Errorf("%w: %q", model.ErrInvalidSection, section)
		}
		stored = v
		return true, nil
	})
	return stored, err
}

func (a *App) SetLevel(ctx context.Context, account string, section model.Section, label string) error {
	return a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		if !r.SetLevel(section, label) {
			return false, fmt.Errorf("%w: %q", model.ErrInvalidSection, section)
		}
		return true, nil
	})
}

func (a *App) SetSpecialLevel(ctx context.Context, account string, kind model.SpecialKind, level int) error {
	return a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		return true, r.SetSpecialLevel(kind, level)
	})
}

func (a *App) SetSpecialStartTime(ctx context.Context, account string, kind model.SpecialKind, raw string) error {
	return a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		return true, r.SetSpecialStartTime(kind, raw)
	})
}

// SetSpecialTarget points kind at taskID; an empty taskID clears the target.
func (a *App) SetSpecialTarget(ctx context.Context, account string, kind model.SpecialKind, taskID string) error {
	return a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		if strings.TrimSpace(taskID) == "" {
			return true, r.ClearSpecialTarget(kind)
		}
		return true, r.SetSpecialTarget(kind, strings.TrimSpace(taskID))
	})
}

func (a *App) ToggleCollapsed(ctx context.Context, account string, section model.Section) (bool, error) {
	var collapsed bool
	err := a.mutate(ctx, account, func(r *registry.Registry) (bool, error) {
		collapsed = r.ToggleCollapsed(string(section))
		return true, nil
	})
	return collapsed, err
}

// CheckDeductions runs the daily ledger pass and persists state, ledger
// and journal only when something was applied.
func (a *App) CheckDeductions(ctx context.Context) (ledger.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	res := a.ledger.Check(a.accounts, now)
	if !res.Dirty() {
		return res, nil
	}
	a.refreshLocked()
	for _, e := range res.Applied {
		a.logger.Info("deduction applied",
			slog.String("account", e.Account),
			slog.String("kind", string(e.Kind)),
			slog.String("task_id", e.TaskID),
			slog.Int("minutes", e.Minutes),
			slog.String("day", e.Day),
		)
	}

	// ledger before tasks: a reload must never reapply today's deduction
	if err := a.saveLedgerLocked(ctx); err != nil {
		return res, err
	}
	if err := a.saveStateLocked(ctx); err != nil {
		return res, err
	}
	if err := a.store.AppendDeductions(ctx, journalEntries(res.Applied)); err != nil {
		a.logger.Error("journal append failed", slog.Any("error", err))
		return res, fmt.Errorf("append deductions: %w", err)
	}
	return res, nil
}

func journalEntries(applied []ledger.Entry) []storage.Deduction {
	out := make([]storage.Deduction, 0, len(applied))
	for _, e := range applied {
		name := fmt.Sprintf("%s|%s|%s", e.Account, e.Kind, e.Day)
		out = append(out, storage.Deduction{
			ID:        uuid.NewSHA1(deductionNamespace, []byte(name)).String(),
			Account:   e.Account,
			Kind:      string(e.Kind),
			TaskID:    e.TaskID,
			Day:       e.Day,
			Minutes:   e.Minutes,
			AppliedAt: e.AppliedAt,
		})
	}
	return out
}

func (a *App) Deductions(ctx context.Context, filter storage.DeductionFilter) ([]storage.Deduction, error) {
	return a.store.ListDeductions(ctx, filter)
}

func (a *App) Agenda() []agenda.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return agenda.Build(agenda.Input{
		Accounts:      a.accounts,
		Sections:      a.opts.Sections,
		Now:           a.clock.Now(),
		Horizon:       a.opts.Horizon,
		ClusterWindow: a.opts.ClusterWindow,
		Policy:        a.opts.Policy,
	})
}

// UpcomingCompletions lists every pending task as an alert for the
// completion engine.
func (a *App) UpcomingCompletions() []scheduler.CompletionEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	titles := model.SectionIndex(a.opts.Sections)
	now := a.clock.Now()
	out := make([]scheduler.CompletionEvent, 0)
	for _, acc := range a.accounts {
		for _, t := range acc.Tasks {
			p := countdown.Project(t.EntryTimestamp, t.Duration.TotalMinutes(), t.TotalDeductedMinutes, now, a.opts.Policy)
			if p.Status != countdown.StatusPending {
				continue
			}
			out = append(out, scheduler.CompletionEvent{
				TaskID:       t.ID,
				Account:      acc.Name,
				Label:        t.Label,
				SectionTitle: titles[t.Section].Title,
				At:           *p.CompletionAt,
			})
		}
	}
	return out
}

func (a *App) Export(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshLocked()
	data, err := snapshot.Export(a.accounts, a.ledger, a.clock.Now())
	if err != nil {
		return nil, err
	}
	a.logger.Info("state exported", slog.Int("bytes", len(data)))
	return data, nil
}

// Import replaces all state with data. Nothing changes when data fails
// validation.
func (a *App) Import(ctx context.Context, data []byte) error {
	snap, err := snapshot.Decode(data, a.opts.Accounts, a.opts.Sections)
	if err != nil {
		a.logger.Warn("import rejected", slog.Any("error", err))
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts = snap.Accounts
	a.ledger = snap.Ledger
	a.refreshLocked()
	if err := a.saveLedgerLocked(ctx); err != nil {
		return err
	}
	if err := a.saveStateLocked(ctx); err != nil {
		return err
	}
	a.logger.Info("state imported", slog.Int("accounts", len(snap.Accounts)), slog.Time("exported_at", snap.ExportedAt))
	return nil
}

func (a *App) refreshLocked() {
	for _, acc := range a.accounts {
		registry.New(acc, a.opts.Sections, a.clock, a.opts.Policy).Refresh()
	}
}

func (a *App) saveStateLocked(ctx context.Context) error {
	payload, err := json.Marshal(persistedState{Accounts: a.accounts})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := a.store.Save(ctx, StateKey, string(payload)); err != nil {
		a.logger.Error("state save failed", slog.Any("error", err))
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (a *App) saveLedgerLocked(ctx context.Context) error {
	payload, err := json.Marshal(a.ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := a.store.Save(ctx, LedgerKey, string(payload)); err != nil {
		a.logger.Error("ledger save failed", slog.Any("error", err))
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
