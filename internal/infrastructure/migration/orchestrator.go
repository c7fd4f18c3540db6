package migration

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Operation moves one schema towards target
type Operation func(ctx context.Context, schema, target string) (Result, error)

// Failure is the error recorded for one schema that could not be migrated
type Failure struct {
	Schema string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("schema %s: %v", f.Schema, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Hooks let callers report progress around each schema
type Hooks struct {
	Before func(schema string)
	After  func(res Result)
}

// SchemaLister discovers tenant schemas
type SchemaLister interface {
	ListSchemas(ctx context.Context) ([]string, error)
}

// Orchestrator runs an operation over many schemas, one after another. A
// failing schema never stops or rolls back the others.
type Orchestrator struct {
	schemas SchemaLister
	logger  *zap.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(schemas SchemaLister, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{schemas: schemas, logger: logger}
}

// Run applies op to each schema in order and returns one result per schema.
// The error combines a *Failure for every schema that failed and is nil only
// when all of them succeeded.
func (o *Orchestrator) Run(ctx context.Context, schemas []string, op Operation, target string, hooks Hooks) ([]Result, error) {
	results := make([]Result, 0, len(schemas))
	var errs error

	for _, schema := range schemas {
		if hooks.Before != nil {
			hooks.Before(schema)
		}
		res, err := op(ctx, schema, target)
		res.Schema = schema
		if err != nil {
			res.Err = err
			res.Applied = false
			errs = multierr.Append(errs, &Failure{Schema: schema, Err: err})
			o.logger.Error("Schema migration failed",
				zap.String("schema", schema),
				zap.String("target", target),
				zap.Error(err),
			)
		} else {
			o.logger.Info("Schema migrated",
				zap.String("schema", schema),
				zap.String("from", res.From),
				zap.String("to", res.To),
				zap.Int("steps", len(res.Steps)),
			)
		}
		if hooks.After != nil {
			hooks.After(res)
		}
		results = append(results, res)
	}
	return results, errs
}

// RunAll discovers the tenant schemas and applies op to each of them
func (o *Orchestrator) RunAll(ctx context.Context, op Operation, target string, hooks Hooks) ([]Result, error) {
	schemas, err := o.schemas.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, schemas, op, target, hooks)
}

// Failures extracts the per-schema failures from an error returned by Run
func Failures(err error) []*Failure {
	var out []*Failure
	for _, e := range multierr.Errors(err) {
		if f, ok := e.(*Failure); ok {
			out = append(out, f)
		}
	}
	return out
}
