package storage

import "time"

type Deduction struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Kind      string    `json:"kind"`
	TaskID    string    `json:"taskId"`
	Day       string    `json:"day"`
	Minutes   int       `json:"minutes"`
	AppliedAt time.Time `json:"appliedAt"`
}

type DeductionFilter struct {
	Account string
	TaskID  string
	Limit   int
	Offset  int
}

func (f DeductionFilter) matches(d Deduction) bool {
	if f.Account != "" && d.Account != f.Account {
		return false
	}
	if f.TaskID != "" && d.TaskID != f.TaskID {
		return false
	}
	return true
}
