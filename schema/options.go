package schema

import (
	"github.com/i64/duckparse/cursor"
	"github.com/i64/duckparse/parse"
)

type config struct {
	funcs      map[string]parse.Reprocessor
	hooks      map[string]func(*cursor.Cursor) error
	processors map[string]parse.ProcessorFunc
}

// Option configures Load.
type Option func(*config)

// WithFuncs registers reprocess functions referenced by "reprocess.func".
func WithFuncs(funcs map[string]parse.Reprocessor) Option {
	return func(c *config) {
		for name, fn := range funcs {
			c.funcs[name] = fn
		}
	}
}

// WithHooks registers pre-decode hooks referenced by a structure's "before".
func WithHooks(hooks map[string]func(*cursor.Cursor) error) Option {
	return func(c *config) {
		for name, fn := range hooks {
			c.hooks[name] = fn
		}
	}
}

// WithProcessors registers processors for fields of type "custom".
func WithProcessors(procs map[string]parse.ProcessorFunc) Option {
	return func(c *config) {
		for name, fn := range procs {
			c.processors[name] = fn
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		funcs:      make(map[string]parse.Reprocessor),
		hooks:      make(map[string]func(*cursor.Cursor) error),
		processors: make(map[string]parse.ProcessorFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
