// Package hooks provides an in-process implementation of the named filter
// chain port. Deployments register filters at startup; unregistered hooks
// pass values through untouched.
package hooks

import (
	"context"
	"sync"

	"github.com/lnshout/shoutout/internal/ports"
)

type Filter func(ctx context.Context, value interface{}) (interface{}, error)

type Chain struct {
	mu      sync.RWMutex
	filters map[string][]Filter
}

var _ ports.HookService = (*Chain)(nil)

func NewChain() *Chain {
	return &Chain{filters: make(map[string][]Filter)}
}

func (c *Chain) Register(hook string, filter Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters[hook] = append(c.filters[hook], filter)
}

func (c *Chain) ApplyFilter(ctx context.Context, hook string, value interface{}) (interface{}, error) {
	c.mu.RLock()
	filters := c.filters[hook]
	c.mu.RUnlock()

	var err error
	for _, filter := range filters {
		value, err = filter(ctx, value)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}
