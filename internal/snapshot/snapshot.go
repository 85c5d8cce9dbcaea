// Package snapshot encodes and validates the portable export of every
// account plus the deduction ledger.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/villageclock/internal/ledger"
	"github.com/sandeepkv93/villageclock/internal/model"
)

const Version = 1

var ErrInvalidSnapshot = errors.New("snapshot: invalid snapshot")

type Snapshot struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Accounts   []*model.Account `json:"accounts"`
	Ledger     *ledger.Ledger   `json:"ledger"`
}

func Export(accounts []*model.Account, l *ledger.Ledger, exportedAt time.Time) ([]byte, error) {
	if l == nil {
		l = ledger.New()
	}
	snap := Snapshot{
		Version:    Version,
		ExportedAt: exportedAt,
		Accounts:   accounts,
		Ledger:     l,
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(out, '\n'), nil
}

// Decode parses and validates data. The returned accounts follow the
// order of known; configured accounts absent from data come back empty.
// Special-task targets naming missing tasks are cleared.
func Decode(data []byte, known []model.AccountConfig, sections []model.SectionConfig) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty input", ErrInvalidSnapshot)
	}
	var raw Snapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if raw.Version != Version {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, raw.Version)
	}

	configured := make(map[string]model.AccountConfig, len(known))
	for _, cfg := range known {
		configured[cfg.Name] = cfg
	}
	index := model.SectionIndex(sections)

	byName := make(map[string]*model.Account, len(raw.Accounts))
	for _, acc := range raw.Accounts {
		if acc == nil {
			return Snapshot{}, fmt.Errorf("%w: null account", ErrInvalidSnapshot)
		}
		if _, ok := configured[acc.Name]; !ok {
			return Snapshot{}, fmt.Errorf("%w: unknown account %q", ErrInvalidSnapshot, acc.Name)
		}
		if _, dup := byName[acc.Name]; dup {
			return Snapshot{}, fmt.Errorf("%w: duplicate account %q", ErrInvalidSnapshot, acc.Name)
		}
		if err := validateAccount(acc, index); err != nil {
			return Snapshot{}, fmt.Errorf("%w: account %q: %v", ErrInvalidSnapshot, acc.Name, err)
		}
		byName[acc.Name] = acc
	}

	out := Snapshot{Version: raw.Version, ExportedAt: raw.ExportedAt}
	for _, cfg := range known {
		acc, ok := byName[cfg.Name]
		if !ok {
			acc = model.NewAccount(cfg.Name, cfg.Avatar)
		}
		acc.Avatar = cfg.Avatar
		out.Accounts = append(out.Accounts, acc)
	}

	if raw.Ledger == nil {
		out.Ledger = ledger.New()
		return out, nil
	}
	records := make([]ledger.Record, 0)
	for _, rec := range raw.Ledger.Records() {
		if !rec.Kind.IsValid() {
			return Snapshot{}, fmt.Errorf("%w: ledger kind %q", ErrInvalidSnapshot, rec.Kind)
		}
		if _, err := time.Parse(time.DateOnly, rec.Day); err != nil {
			return Snapshot{}, fmt.Errorf("%w: ledger day %q", ErrInvalidSnapshot, rec.Day)
		}
		if _, ok := configured[rec.Account]; !ok {
			return Snapshot{}, fmt.Errorf("%w: ledger account %q", ErrInvalidSnapshot, rec.Account)
		}
		records = append(records, rec)
	}
	out.Ledger = ledger.FromRecords(records)
	return out, nil
}

func validateAccount(acc *model.Account, index map[model.Section]model.SectionConfig) error {
	acc.EnsureMaps()

	ids := make(map[string]bool, len(acc.Tasks))
	slots := make(map[string]bool, len(acc.Tasks))
	for _, t := range acc.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := index[t.Section]; !ok {
			return fmt.Errorf("%w: %q", model.ErrInvalidSection, t.Section)
		}
		if ids[t.ID] {
			return fmt.Errorf("duplicate task id %s", t.ID)
		}
		ids[t.ID] = true
		slot := fmt.Sprintf("%s/%d", t.Section, t.Worker)
		if slots[slot] {
			return fmt.Errorf("duplicate slot %s", slot)
		}
		slots[slot] = true
	}

	for section, n := range acc.WorkerCounts {
		if _, ok := index[section]; !ok {
			return fmt.Errorf("%w: %q", model.ErrInvalidSection, section)
		}
		if n < 0 || n > model.MaxWorkers {
			return fmt.Errorf("%w: count %d for %s", model.ErrInvalidWorker, n, section)
		}
	}
	for section := range acc.Levels {
		if _, ok := index[section]; !ok {
			return fmt.Errorf("%w: %q", model.ErrInvalidSection, section)
		}
	}

	for _, kind := range model.SpecialKinds() {
		st, _ := acc.SpecialTasks.Get(kind)
		if st.Level < 0 {
			return fmt.Errorf("negative %s level %d", kind, st.Level)
		}
		if strings.TrimSpace(st.TargetTaskID) != "" && !ids[st.TargetTaskID] {
			st.TargetTaskID = ""
		}
	}
	return nil
}
