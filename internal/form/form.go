// Package form keeps the inputs of one form instance in a typed struct and
// validates them with `validate` struct tags.
//
// Fields are addressed by their `form` tag name. A field tagged with the
// "blur" option (`form:"title,blur"`) only takes a typed value once Blur is
// called for it, mirroring inputs that update on loss of focus. Other fields
// take values immediately.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrUnknownField is returned when a name does not match any `form` tag.
var ErrUnknownField = errors.New("form: unknown field")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(formName)
	return v
}

func formName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
	if name == "-" {
		return ""
	}
	return name
}

type field struct {
	index  int
	goName string
	onBlur bool
}

// FieldSet is the validated collection of inputs backing one form. T must
// be a struct type.
type FieldSet[T any] struct {
	mu      sync.Mutex
	values  T
	fields  map[string]field
	pending map[string]any
	errs    map[string]string
	// unparsed holds fields whose last input could not be converted. Only a
	// later successful commit or Reset clears an entry.
	unparsed map[string]bool
}

// New builds a FieldSet seeded with initial. It panics if T is not a struct,
// which is a programming error.
func New[T any](initial T) *FieldSet[T] {
	typ := reflect.TypeOf(initial)
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("form: %T is not a struct", initial))
	}

	fields := make(map[string]field, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		tag := sf.Tag.Get("form")
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fields[name] = field{index: i, goName: sf.Name, onBlur: opts == "blur"}
	}

	return &FieldSet[T]{
		values:  initial,
		fields:  fields,
		pending:  make(map[string]any),
		errs:     make(map[string]string),
		unparsed: make(map[string]bool),
	}
}

// Input records a value typed into a field. Blur-updated fields hold it as
// pending until Blur; others commit and validate straight away.
func (f *FieldSet[T]) Input(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, ok := f.fields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if fd.onBlur {
		f.pending[name] = value
		return nil
	}
	return f.commit(name, fd, value)
}

// Blur commits the pending value of a field, if any, and validates it.
func (f *FieldSet[T]) Blur(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, ok := f.fields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	value, ok := f.pending[name]
	if !ok {
		f.validateField(name, fd)
		return nil
	}
	delete(f.pending, name)
	return f.commit(name, fd, value)
}

// Patch sets a field programmatically, bypassing the blur gate.
func (f *FieldSet[T]) Patch(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, ok := f.fields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	delete(f.pending, name)
	return f.commit(name, fd, value)
}

// Valid validates every committed field and reports whether all pass.
func (f *FieldSet[T]) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.errs)
	err := validate.Struct(f.values)
	f.record(err)
	for name := range f.unparsed {
		f.errs[name] = "type"
	}
	return len(f.errs) == 0
}

// Values returns a copy of the committed values.
func (f *FieldSet[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Value returns the committed value of one field.
func (f *FieldSet[T]) Value(name string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, ok := f.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return reflect.ValueOf(&f.values).Elem().Field(fd.index).Interface(), nil
}

// Errors maps field names to the first failing rule, for the fields
// validated so far.
func (f *FieldSet[T]) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Reset clears every field to its zero value and drops pending input and
// errors.
func (f *FieldSet[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	f.values = zero
	clear(f.pending)
	clear(f.errs)
	clear(f.unparsed)
}

func (f *FieldSet[T]) commit(name string, fd field, value any) error {
	target := reflect.ValueOf(&f.values).Elem().Field(fd.index)
	if err := assign(target, value); err != nil {
		f.unparsed[name] = true
		f.errs[name] = "type"
		return fmt.Errorf("form: field %s: %w", name, err)
	}
	delete(f.unparsed, name)
	f.validateField(name, fd)
	return nil
}

func (f *FieldSet[T]) validateField(name string, fd field) {
	delete(f.errs, name)
	if f.unparsed[name] {
		f.errs[name] = "type"
		return
	}
	f.record(validate.StructPartial(f.values, fd.goName))
}

func (f *FieldSet[T]) record(err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}
	for _, e := range verrs {
		if _, seen := f.errs[e.Field()]; !seen {
			f.errs[e.Field()] = e.Tag()
		}
	}
}

// assign stores value into target, converting text input into the numeric
// kinds forms commonly hold.
func assign(target reflect.Value, value any) error {
	if value == nil {
		target.SetZero()
		return nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(target.Type()) {
		target.Set(v)
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot assign %T to %s", value, target.Type())
	}
	s = strings.TrimSpace(s)

	switch target.Kind() {
	case reflect.String:
		target.SetString(s)
	case reflect.Float32, reflect.Float64:
		if s == "" {
			target.SetZero()
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		target.SetFloat(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if s == "" {
			target.SetZero()
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		target.SetInt(n)
	default:
		return fmt.Errorf("cannot assign text to %s", target.Type())
	}
	return nil
}
