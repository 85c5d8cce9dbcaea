// Package agenda aggregates every account's tasks into one time-ordered
// list of upcoming and recently completed work.
package agenda

import (
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
)

const (
	DefaultHorizon       = 24 * time.Hour
	DefaultClusterWindow = time.Hour

	UnknownSectionTitle = "Unknown area"
	EmptyLabel          = "(no task)"
)

type Input struct {
	Accounts      []*model.Account
	Sections      []model.SectionConfig
	Now           time.Time
	Horizon       time.Duration
	ClusterWindow time.Duration
	Policy        countdown.DisplayPolicy
}

type Item struct {
	AccountName      string
	Avatar           string
	TaskID           string
	Section          model.Section
	SectionTitle     string
	TaskLabel        string
	CompletionAt     time.Time
	DisplayText      string
	RemainingMinutes int
	IsCompleted      bool
}

// Build keeps every task whose projected completion is at or before
// now+horizon, completed ones included, sorted by completion instant
// and then clustered per account.
func Build(in Input) []Item {
	horizon := in.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	limit := in.Now.Add(horizon)
	titles := model.SectionIndex(in.Sections)

	items := make([]Item, 0)
	for _, acc := range in.Accounts {
		if acc == nil {
			continue
		}
		for _, t := range acc.Tasks {
			p := countdown.Project(t.EntryTimestamp, t.Duration.TotalMinutes(), t.TotalDeductedMinutes, in.Now, in.Policy)
			if p.CompletionAt == nil || p.CompletionAt.After(limit) {
				continue
			}
			title := UnknownSectionTitle
			if cfg, ok := titles[t.Section]; ok {
				title = cfg.Title
			}
			label := strings.TrimSpace(t.Label)
			if label == "" {
				label = EmptyLabel
			}
			items = append(items, Item{
				AccountName:      acc.Name,
				Avatar:           acc.Avatar,
				TaskID:           t.ID,
				Section:          t.Section,
				SectionTitle:     title,
				TaskLabel:        label,
				CompletionAt:     *p.CompletionAt,
				DisplayText:      countdown.FormatInstant(*p.CompletionAt, in.Now, in.Policy),
				RemainingMinutes: p.RemainingMinutes,
				IsCompleted:      p.Status == countdown.StatusCompleted,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CompletionAt.Before(items[j].CompletionAt)
	})
	return Cluster(items, in.ClusterWindow)
}

// Cluster pulls later items of an account next to that account's last
// placed item when they complete within window of it. Items must already
// be sorted; relative order inside each pulled group is preserved.
func Cluster(items []Item, window time.Duration) []Item {
	if window <= 0 || len(items) < 3 {
		return items
	}
	placed := make([]bool, len(items))
	out := make([]Item, 0, len(items))
	for i := range items {
		if placed[i] {
			continue
		}
		placed[i] = true
		out = append(out, items[i])
		last := items[i].CompletionAt
		for j := i + 1; j < len(items); j++ {
			if placed[j] || items[j].AccountName != items[i].AccountName {
				continue
			}
			if items[j].CompletionAt.Sub(last) > window {
				break
			}
			placed[j] = true
			out = append(out, items[j])
			last = items[j].CompletionAt
		}
	}
	return out
}

// Counts summarises a built list.
func Counts(items []Item) (pending, completed int) {
	for _, it := range items {
		if it.IsCompleted {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}
