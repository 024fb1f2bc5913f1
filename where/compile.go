package where

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Compiler compiles conditions with a fixed set of options. A Compiler is
// immutable after New and safe for concurrent use.
type Compiler struct {
	cfg config
}

// New returns a Compiler configured with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{cfg: defaultConfig()}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	return c
}

// Compile returns the SQL predicate of the condition, without the WHERE
// keyword. An empty condition compiles to the empty string.
func (c *Compiler) Compile(input any) (string, error) {
	p := &parser{cfg: &c.cfg}
	n, err := p.parse(input)
	if err != nil {
		return "", c.wrap(err)
	}
	sql, err := newRenderer(&c.cfg).node(n, noParent)
	if err != nil {
		return "", c.wrap(err)
	}
	return sql, nil
}

// Clause is like Compile but returns a complete WHERE clause, or the empty
// string if the condition is empty.
func (c *Compiler) Clause(input any) (string, error) {
	sql, err := c.Compile(input)
	if err != nil || sql == "" {
		return "", err
	}
	return "WHERE " + sql, nil
}

// CompileAll compiles the inputs concurrently and returns their predicates
// in input order. It stops at the first error.
func (c *Compiler) CompileAll(ctx context.Context, inputs []any) ([]string, error) {
	out := make([]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sql, err := c.Compile(input)
			if err != nil {
				return fmt.Errorf("sqlcond: condition %d: %w", i, err)
			}
			out[i] = sql
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compiler) wrap(err error) error {
	if c.cfg.statement == 0 {
		return err
	}
	return &CompileError{Statement: c.cfg.statement, Err: err}
}

// Compile compiles a condition with the given options.
//
//	sql, err := where.Compile(where.M(
//		"name", "a8m",
//		where.Or, []any{
//			where.M("age", where.M(where.Gt, 30)),
//			where.M("admin", true),
//		},
//	))
func Compile(input any, opts ...Option) (string, error) {
	return New(opts...).Compile(input)
}

// Clause compiles a condition into a WHERE clause with the given options.
func Clause(input any, opts ...Option) (string, error) {
	return New(opts...).Clause(input)
}
