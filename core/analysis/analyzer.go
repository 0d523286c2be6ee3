package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
	"github.com/tristendillon/forge/core/walker"
)

// Hook receives the full project listing on every analysis pass and returns
// a result other listeners may consume.
type Hook func(ctx context.Context, files []models.FileDescriptor) (any, error)

type Results map[string]any

type namedHook struct {
	name string
	fn   Hook
}

// Analyzer walks the project once per pass and fans the listing out to the
// registered hooks in registration order.
type Analyzer struct {
	root   string
	walker walker.ProjectWalker

	mu    sync.RWMutex
	hooks []namedHook
}

func NewAnalyzer(root string, w walker.ProjectWalker) *Analyzer {
	return &Analyzer{root: root, walker: w}
}

func (a *Analyzer) OnAnalyse(name string, hook Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, namedHook{name: name, fn: hook})
}

func (a *Analyzer) Analyse(ctx context.Context) (Results, error) {
	files, err := a.walker.Walk(a.root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk project %s: %w", a.root, err)
	}

	a.mu.RLock()
	hooks := make([]namedHook, len(a.hooks))
	copy(hooks, a.hooks)
	a.mu.RUnlock()

	results := make(Results, len(hooks))
	for _, h := range hooks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := h.fn(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("analyse hook %s failed: %w", h.name, err)
		}
		results[h.name] = res
		logger.Debug("Analyse hook %s done", h.name)
	}

	return results, nil
}
