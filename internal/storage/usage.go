package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// TokenUsage is the generative usage of one model on one day.
type TokenUsage struct {
	Model            string `json:"model"`
	Requests         int64  `json:"requests"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
}

// UsageLedger accounts generative token usage per UTC day and model.
type UsageLedger interface {
	Record(ctx context.Context, model string, prompt, completion int64) error
	Daily(ctx context.Context, day time.Time) ([]TokenUsage, error)
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func sortUsage(u []TokenUsage) {
	sort.Slice(u, func(i, j int) bool { return u[i].Model < u[j].Model })
}

// InMemoryUsageLedger keeps usage in memory.
type InMemoryUsageLedger struct {
	mu    sync.RWMutex
	now   func() time.Time
	usage map[string]map[string]*TokenUsage // day -> model
}

// NewInMemoryUsageLedger creates an empty ledger.
func NewInMemoryUsageLedger() *InMemoryUsageLedger {
	return &InMemoryUsageLedger{
		now:   time.Now,
		usage: make(map[string]map[string]*TokenUsage),
	}
}

// Record implements UsageLedger.
func (l *InMemoryUsageLedger) Record(ctx context.Context, model string, prompt, completion int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := dayKey(l.now())
	byModel, ok := l.usage[day]
	if !ok {
		byModel = make(map[string]*TokenUsage)
		l.usage[day] = byModel
	}
	u, ok := byModel[model]
	if !ok {
		u = &TokenUsage{Model: model}
		byModel[model] = u
	}
	u.Requests++
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += prompt + completion
	return nil
}

// Daily implements UsageLedger.
func (l *InMemoryUsageLedger) Daily(ctx context.Context, day time.Time) ([]TokenUsage, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]TokenUsage, 0, len(l.usage[dayKey(day)]))
	for _, u := range l.usage[dayKey(day)] {
		result = append(result, *u)
	}
	sortUsage(result)
	return result, nil
}
