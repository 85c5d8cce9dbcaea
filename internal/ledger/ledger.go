// Package ledger applies the once-per-day special-task deductions and
// remembers which (account, kind) pairs were already served today.
package ledger

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/sandeepkv93/villageclock/internal/model"
)

// MinutesPerLevel is the daily deduction granted by one special-task level.
const MinutesPerLevel = 60

// Record is the persisted form of one (account, kind) mark.
type Record struct {
	Account string            `json:"account"`
	Kind    model.SpecialKind `json:"kind"`
	Day     string            `json:"day"`
	TaskID  string            `json:"taskId"`
}

// Entry describes one applied deduction.
type Entry struct {
	Account   string
	Kind      model.SpecialKind
	TaskID    string
	Day       string
	Minutes   int
	AppliedAt time.Time
}

type Result struct {
	Applied []Entry
}

func (r Result) Dirty() bool { return len(r.Applied) > 0 }

func (r Result) TotalMinutes() int {
	total := 0
	for _, e := range r.Applied {
		total += e.Minutes
	}
	return total
}

type markKey struct {
	account string
	kind    model.SpecialKind
}

type Ledger struct {
	marks map[markKey]Record
}

func New() *Ledger {
	return &Ledger{marks: make(map[markKey]Record)}
}

// FromRecords rebuilds a ledger from persisted records; later duplicates win.
func FromRecords(records []Record) *Ledger {
	l := New()
	for _, r := range records {
		l.marks[markKey{r.Account, r.Kind}] = r
	}
	return l
}

func (l *Ledger) LastApplied(account string, kind model.SpecialKind) (Record, bool) {
	r, ok := l.marks[markKey{account, kind}]
	return r, ok
}

// Records lists every mark ordered by account then kind.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.marks))
	for _, r := range l.marks {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account != out[j].Account {
			return out[i].Account < out[j].Account
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Check adds at most one day's deduction per (account, kind). Repeated
// calls on the same calendar day change nothing, and a multi-day gap
// still yields a single application per call.
func (l *Ledger) Check(accounts []*model.Account, now time.Time) Result {
	var res Result
	today := model.DayKey(now)
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		for _, kind := range model.SpecialKinds() {
			st, err := acc.SpecialTasks.Get(kind)
			if err != nil || st.Level <= 0 || st.TargetTaskID == "" {
				continue
			}
			key := markKey{acc.Name, kind}
			if mark, ok := l.marks[key]; ok && mark.Day == today {
				continue
			}
			if !st.StartTime.Reached(now) {
				continue
			}
			target, ok := acc.FindTask(st.TargetTaskID)
			if !ok {
				continue
			}
			minutes := st.Level * MinutesPerLevel
			target.TotalDeductedMinutes += minutes
			l.marks[key] = Record{Account: acc.Name, Kind: kind, Day: today, TaskID: target.ID}
			res.Applied = append(res.Applied, Entry{
				Account:   acc.Name,
				Kind:      kind,
				TaskID:    target.ID,
				Day:       today,
				Minutes:   minutes,
				AppliedAt: now,
			})
		}
	}
	return res
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Marks []Record `json:"marks"`
	}{Marks: l.Records()})
}

func (l *Ledger) UnmarshalJSON(b []byte) error {
	var payload struct {
		Marks []Record `json:"marks"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return err
	}
	*l = *FromRecords(payload.Marks)
	return nil
}
