// Package cueschema validates cocache records against a CUE definition.
//
// The definition is closed, so attributes it does not declare are rejected.
// Optional fields use `?`, required ones `!`:
//
//	v, err := cueschema.New[map[string]any](`
//	    #Record: {
//	        id!:    string
//	        title?: string
//	        tags?:  [...string]
//	    }`)
//	cache, _ := cocache.New[map[string]any](cocache.Options[map[string]any]{
//	    Validators: []cocache.Validator[map[string]any]{v},
//	})
package cueschema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/unkn0wn-root/cocache"
)

// DefaultDefinition is the definition looked up when none is named.
const DefaultDefinition = "#Record"

// ErrIntegrity marks a record that does not conform to the schema.
var ErrIntegrity = errors.New("cueschema: integrity violation")

type config struct {
	definition string
	filename   string
}

type Option func(*config)

// WithDefinition selects the definition records are checked against.
func WithDefinition(name string) Option { return func(c *config) { c.definition = name } }

// WithFilename sets the file name reported in schema compile errors.
func WithFilename(name string) Option { return func(c *config) { c.filename = name } }

// Schema is a cocache.Validator. The zero value and a Schema built from an
// empty source accept every record.
type Schema[R any] struct {
	mu  *sync.Mutex // cue.Context is not safe for concurrent use
	ctx *cue.Context
	def cue.Value
}

var _ cocache.Validator[map[string]any] = Schema[map[string]any]{}

// New compiles src and resolves the record definition in it.
func New[R any](src string, opts ...Option) (Schema[R], error) {
	cfg := config{definition: DefaultDefinition, filename: "schema.cue"}
	for _, o := range opts {
		o(&cfg)
	}
	if strings.TrimSpace(src) == "" {
		return Schema[R]{}, nil
	}

	ctx := cuecontext.New()
	root := ctx.CompileString(src, cue.Filename(cfg.filename))
	if err := root.Err(); err != nil {
		return Schema[R]{}, fmt.Errorf("cueschema: compile: %w", err)
	}
	def := root.LookupPath(cue.ParsePath(cfg.definition))
	if !def.Exists() {
		return Schema[R]{}, fmt.Errorf("cueschema: definition %s not found", cfg.definition)
	}
	if err := def.Err(); err != nil {
		return Schema[R]{}, fmt.Errorf("cueschema: %s: %w", cfg.definition, err)
	}
	return Schema[R]{mu: &sync.Mutex{}, ctx: ctx, def: def}, nil
}

// MustNew is like New but panics on error.
func MustNew[R any](src string, opts ...Option) Schema[R] {
	s, err := New[R](src, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate unifies record with the definition and requires the result to be
// concrete.
func (s Schema[R]) Validate(record R, displayName string) error {
	if s.ctx == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.Encode(record)
	if err := v.Err(); err != nil {
		return violation(displayName, err)
	}
	if err := s.def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return violation(displayName, err)
	}
	return nil
}

type integrityError struct {
	msg string
	err error
}

func (e *integrityError) Error() string   { return e.msg }
func (e *integrityError) Unwrap() []error { return []error{ErrIntegrity, e.err} }

func violation(displayName string, err error) error {
	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	if len(msgs) == 0 {
		msgs = append(msgs, err.Error())
	}
	return &integrityError{
		msg: fmt.Sprintf("IntegrityViolation: %s (source: Cocache[%s])", strings.Join(msgs, "; "), displayName),
		err: err,
	}
}
