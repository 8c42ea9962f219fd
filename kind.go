// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind names a class of callback faults. Kinds form a hierarchy: a
// kind's Unwrap returns its parent, so [errors.Is] on a fault of a derived
// kind also reports true for every ancestor kind. This gives exception
// interceptors "catch subtypes" semantics without reflection.
//
// Example:
//
//	var ErrValidation = pipeline.NewErrorKind("validation", pipeline.KindIllegalArgument)
//
//	err := ErrValidation.New("name is required")
//	errors.Is(err, pipeline.KindIllegalArgument) // true
//	errors.Is(err, pipeline.KindRuntime)         // true
type ErrorKind struct {
	name   string
	parent *ErrorKind
}

// NewErrorKind declares a kind. parent may be nil for a root kind.
func NewErrorKind(name string, parent *ErrorKind) *ErrorKind {
	return &ErrorKind{name: name, parent: parent}
}

// Built-in kinds.
var (
	KindRuntime         = NewErrorKind("runtime", nil)
	KindIllegalArgument = NewErrorKind("illegal argument", KindRuntime)
	KindIllegalState    = NewErrorKind("illegal state", KindRuntime)
	KindUnsupported     = NewErrorKind("unsupported operation", KindRuntime)
	KindNotFound        = NewErrorKind("resource not found", KindRuntime)
	KindPanic           = NewErrorKind("panic", KindRuntime)
)

// Name returns the kind name.
func (k *ErrorKind) Name() string {
	return k.name
}

// Parent returns the parent kind, or nil for a root kind.
func (k *ErrorKind) Parent() *ErrorKind {
	return k.parent
}

// Error implements the error interface so kinds can be used as errors.Is
// targets.
func (k *ErrorKind) Error() string {
	return k.name
}

// Unwrap returns the parent kind.
func (k *ErrorKind) Unwrap() error {
	if k.parent == nil {
		return nil
	}
	return k.parent
}

// Is reports whether k descends from (or is) target.
func (k *ErrorKind) Is(target error) bool {
	t, ok := target.(*ErrorKind)
	if !ok {
		return false
	}
	for cur := k; cur != nil; cur = cur.parent {
		if cur == t {
			return true
		}
	}
	return false
}

// New creates a fault of this kind.
func (k *ErrorKind) New(msg string) *Fault {
	return &Fault{kind: k, msg: msg}
}

// Errorf creates a fault of this kind with a formatted message.
// A %w verb wraps the argument as the fault's cause.
func (k *ErrorKind) Errorf(format string, args ...any) *Fault {
	err := fmt.Errorf(format, args...)
	return &Fault{kind: k, msg: err.Error(), cause: errors.Unwrap(err)}
}

// Wrap creates a fault of this kind around cause.
func (k *ErrorKind) Wrap(cause error, msg string) *Fault {
	return &Fault{kind: k, msg: msg, cause: cause}
}

// Fault is an error carrying an [ErrorKind].
type Fault struct {
	kind  *ErrorKind
	msg   string
	cause error
}

// Kind returns the fault's kind.
func (f *Fault) Kind() *ErrorKind {
	return f.kind
}

// Error returns the message, followed by the cause when one is set and
// the message is empty.
func (f *Fault) Error() string {
	switch {
	case f.msg != "":
		return f.msg
	case f.cause != nil:
		return f.cause.Error()
	default:
		return f.kind.name
	}
}

// Unwrap exposes both the kind chain and the cause to errors.Is/As.
func (f *Fault) Unwrap() []error {
	if f.cause == nil {
		return []error{f.kind}
	}
	return []error{f.kind, f.cause}
}

// ErrorMatcher decides whether a pending fault is handled by a predicate.
type ErrorMatcher func(err error) bool

// KindOf matches faults for which errors.Is(err, target) holds. With an
// [ErrorKind] target this includes every derived kind.
func KindOf(target error) ErrorMatcher {
	return func(err error) bool {
		return err != nil && errors.Is(err, target)
	}
}

// TypeOf matches faults whose chain contains an error of type T.
//
// Example:
//
//	pipeline.TypeOf[*json.SyntaxError]()
func TypeOf[T error]() ErrorMatcher {
	return func(err error) bool {
		var target T
		return err != nil && errors.As(err, &target)
	}
}

// AnyError matches every fault.
func AnyError() ErrorMatcher {
	return func(err error) bool {
		return err != nil
	}
}

// panicFault converts a recovered panic value into a fault of [KindPanic].
func panicFault(v any) error {
	if err, ok := v.(error); ok {
		return KindPanic.Wrap(err, err.Error())
	}
	return KindPanic.New(fmt.Sprint(v))
}
