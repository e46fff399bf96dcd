package judge

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/record"
)

// Memo remembers successful verdicts of an inner judge keyed by
// (field, reference, candidate). Errors are not remembered. A Memo is meant
// to live for one reconciliation run.
type Memo struct {
	inner  classify.Judge
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo wraps inner with a memo whose entries expire after ttl.
func NewMemo(inner classify.Judge, ttl time.Duration) *Memo {
	if ttl <= 0 {
		ttl = constants.JudgeMemoTTL
	}
	return &Memo{
		inner: inner,
		store: gocache.New(ttl, constants.JudgeMemoCleanup),
	}
}

// Judge returns the remembered label or asks the inner judge.
func (m *Memo) Judge(ctx context.Context, field record.FieldName, reference, candidate string) (string, error) {
	key := strings.Join([]string{field.String(), reference, candidate}, "\x00")
	if v, ok := m.store.Get(key); ok {
		m.hits.Add(1)
		return v.(string), nil
	}
	m.misses.Add(1)

	label, err := m.inner.Judge(ctx, field, reference, candidate)
	if err != nil {
		return "", err
	}
	m.store.SetDefault(key, label)
	return label, nil
}

// Calls returns how many questions reached the inner judge.
func (m *Memo) Calls() int64 { return m.misses.Load() }

// Hits returns how many questions were answered from memory.
func (m *Memo) Hits() int64 { return m.hits.Load() }
