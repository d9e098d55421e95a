package cocache

// Validator checks a record before it is inserted. Any error aborts the whole
// operation before state is touched. displayName identifies the cache in
// error reports.
type Validator[R any] interface {
	Validate(record R, displayName string) error
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc[R any] func(record R, displayName string) error

func (f ValidatorFunc[R]) Validate(record R, displayName string) error { return f(record, displayName) }

// IDExtractor derives the identifier of a record. An empty id rejects the
// record.
type IDExtractor[R any] interface {
	RecordID(record R) string
}

// IDFunc adapts a plain function to IDExtractor.
type IDFunc[R any] func(record R) string

func (f IDFunc[R]) RecordID(record R) string { return f(record) }

// Identified is implemented by records that know their own id. The default
// extractor uses it.
type Identified interface {
	CacheID() string
}

// Freezer picks the stored representation of a record. Freeze runs on every
// write, Thaw on every read. Stored forms are compared with Options.Equal to
// decide whether a write changed anything.
//
// A Freezer must not let the stored form alias the record passed to Freeze
// or the one returned by Thaw: callers may mutate both, and the stored form
// is shared by every snapshot that contains it.
type Freezer[R any] interface {
	Freeze(record R) (any, error)
	Thaw(stored any) (R, error)
}

// Options configure a Cache. The zero value is usable.
type Options[R any] struct {
	DisplayName string // used in errors and logs; "" => "<<anonymous>>"

	Validators  []Validator[R] // run in order before every insertion
	IDExtractor IDExtractor[R] // nil => Identified, or the "id" attribute of map records
	Freezer     Freezer[R]     // nil => deep copy on write and on read

	// Equal compares two stored forms. nil => deep comparison with go-cmp,
	// unexported fields included.
	Equal func(a, b any) bool

	// OnChange is called synchronously, once, after every committed change.
	// It runs outside the cache lock and may read from the cache.
	OnChange func()

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks
}
