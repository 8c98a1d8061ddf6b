package models

import (
	"sort"
	"strings"
)

// Habit is a single step inside a HabitChain.
type Habit struct {
	ID          string  `json:"id" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=200"`
	Position    int     `json:"position" validate:"min=0"`        // 0-based rank within the chain
	ChainID     string  `json:"chainId"`                          // id of the owning chain
	Completed   bool    `json:"completed"`                        // completed in the current cycle
	CompletedAt *string `json:"completedAt"`                      // RFC3339 timestamp
	Icon        string  `json:"icon,omitempty" validate:"max=50"` // optional icon name
}

// HabitChain is an ordered sequence of habits completed in position order once per day.
type HabitChain struct {
	ID               string  `json:"id" validate:"required,max=50"`
	Name             string  `json:"name" validate:"required,max=100"`
	Description      string  `json:"description" validate:"max=500"`
	Habits           []Habit `json:"habits" validate:"max=10,dive"`
	CreatedAt        string  `json:"createdAt"`     // RFC3339 timestamp
	LastCompleted    *string `json:"lastCompleted"` // RFC3339 timestamp of the last full cycle
	Streak           int     `json:"streak" validate:"min=0"`
	LongestStreak    int     `json:"longestStreak" validate:"min=0"`
	TotalCompletions int     `json:"totalCompletions" validate:"min=0"`
}

// SortHabits orders habits by position.
func (c *HabitChain) SortHabits() {
	sort.SliceStable(c.Habits, func(i, j int) bool {
		return c.Habits[i].Position < c.Habits[j].Position
	})
}

// Reindex sorts the habits and rewrites positions to the dense range 0..n-1,
// stamping each habit with the chain id.
func (c *HabitChain) Reindex() {
	c.SortHabits()
	for i := range c.Habits {
		c.Habits[i].Position = i
		c.Habits[i].ChainID = c.ID
	}
}

// FindHabit returns the index of the habit with the given id, or -1.
func (c *HabitChain) FindHabit(id string) int {
	for i := range c.Habits {
		if c.Habits[i].ID == id {
			return i
		}
	}
	return -1
}

// FindHabitByName returns the index of the first habit whose name matches
// case-insensitively, or -1.
func (c *HabitChain) FindHabitByName(name string) int {
	for i := range c.Habits {
		if strings.EqualFold(c.Habits[i].Name, name) {
			return i
		}
	}
	return -1
}

// AllCompleted reports whether every habit in the chain is completed.
// An empty chain is never complete.
func (c *HabitChain) AllCompleted() bool {
	if len(c.Habits) == 0 {
		return false
	}
	for _, h := range c.Habits {
		if !h.Completed {
			return false
		}
	}
	return true
}

// NextHabit returns the index of the first incomplete habit in position order, or -1.
func (c *HabitChain) NextHabit() int {
	next := -1
	for i, h := range c.Habits {
		if h.Completed {
			continue
		}
		if next == -1 || h.Position < c.Habits[next].Position {
			next = i
		}
	}
	return next
}

// CompletedCount returns how many habits are completed in the current cycle.
func (c *HabitChain) CompletedCount() int {
	n := 0
	for _, h := range c.Habits {
		if h.Completed {
			n++
		}
	}
	return n
}

// ResetCycle marks every habit incomplete for the next daily cycle.
func (c *HabitChain) ResetCycle() {
	for i := range c.Habits {
		c.Habits[i].Completed = false
		c.Habits[i].CompletedAt = nil
	}
}
