// Package errs provides structured application errors.
//
// Derived from the error handling in upspin.io/errors and
// github.com/gilcrest/diygoapi, trimmed down to the pieces we use.
package errs

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as the package and method,
// such as "queryService.Ask".
type Op string

// Kind defines the kind of error this is.
type Kind uint8

// Parameter represents the parameter related to the error.
type Parameter string

// UserName is the name of the user whose request triggered the error.
type UserName string

// Kinds of errors.
//
// Do not reorder this list or remove any items since that will change
// their values. New items must be added only to the end.
const (
	Other           Kind = iota // Unclassified error
	Invalid                     // Invalid operation for this type of item
	IO                          // External I/O error such as network failure
	Exist                       // Item already exists
	NotExist                    // Item does not exist
	Internal                    // Internal error or inconsistency
	Database                    // Error from database
	Validation                  // Input validation error
	InvalidRequest              // Invalid request
	Unauthenticated             // Request lacks valid authentication credentials
	Unauthorized                // Caller is not authorized to perform the operation
	Unavailable                 // Upstream dependency is unavailable
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other_error"
	case Invalid:
		return "invalid_operation"
	case IO:
		return "I/O_error"
	case Exist:
		return "item_already_exists"
	case NotExist:
		return "item_does_not_exist"
	case Internal:
		return "internal_error"
	case Database:
		return "database_error"
	case Validation:
		return "input_validation_error"
	case InvalidRequest:
		return "invalid_request_error"
	case Unauthenticated:
		return "unauthenticated_request"
	case Unauthorized:
		return "unauthorized_request"
	case Unavailable:
		return "unavailable"
	}

	return "unknown_error_kind"
}

// Error is the type that implements the error interface. An Error value
// may leave some fields unset.
type Error struct {
	// User is the name of the user attempting the operation.
	User UserName
	// Kind is the class of error.
	Kind Kind
	// Param represents the parameter related to the error.
	Param Parameter
	// Op is the operation being performed.
	Op Op
	// Err is the underlying error that triggered this one, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return "no error message provided"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) isZero() bool {
	return e.User == "" && e.Kind == 0 && e.Param == "" && e.Op == "" && e.Err == nil
}

// E builds an error value from its arguments. There must be at least one
// argument or E panics. The type of each argument determines its meaning.
// If more than one argument of a given type is presented, only the last
// one is recorded.
//
// The types are:
//
//	errs.Op
//		The operation being performed.
//	errs.Kind
//		The class of error.
//	errs.Parameter
//		The parameter related to the error.
//	errs.UserName
//		The user attempting the operation.
//	string
//		Treated as an error message and assigned to the Err field
//		after a call to errors.New.
//	error
//		The underlying error that triggered this one.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errs.E with no arguments")
	}

	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case Kind:
			e.Kind = arg
		case Parameter:
			e.Param = arg
		case UserName:
			e.User = arg
		case string:
			e.Err = errors.New(arg)
		case *Error:
			copied := *arg
			e.Err = &copied
		case error:
			e.Err = arg
		default:
			panic(fmt.Sprintf("unknown type %T, value %v in error call", arg, arg))
		}
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	// The previous error was also one of ours. Suppress duplications
	// so the message won't contain the same kind twice.
	if prev.Kind == e.Kind {
		prev.Kind = Other
	}

	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}

	return e
}

// Str returns an error for the given text. It is intended for use
// as an argument to E.
func Str(text string) error {
	return errors.New(text)
}

// Match compares err against the template error. Fields set in the
// template must match exactly in err.
func Match(template, err error) bool {
	e1, ok1 := template.(*Error)
	e2, ok2 := err.(*Error)

	if !ok1 || !ok2 {
		return false
	}

	if e1.Op != "" && e2.Op != e1.Op {
		return false
	}
	if e1.Kind != Other && e2.Kind != e1.Kind {
		return false
	}
	if e1.Param != "" && e2.Param != e1.Param {
		return false
	}
	if e1.User != "" && e2.User != e1.User {
		return false
	}
	if e1.Err != nil {
		if _, ok := e1.Err.(*Error); ok {
			return Match(e1.Err, e2.Err)
		}
		if e2.Err == nil || e2.Err.Error() != e1.Err.Error() {
			return false
		}
	}

	return true
}

// KindIs reports whether err, or any error in its chain, is of the
// given kind.
func KindIs(kind Kind, err error) bool {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind != Other {
			return e.Kind == kind
		}

		if e.Err != nil {
			return KindIs(kind, e.Err)
		}
	}

	return false
}

// OpStack returns the op stack for an error chain, outermost
// operation first.
func OpStack(err error) []string {
	type o struct {
		Op    string
		Order int
	}

	e := err
	i := 0
	var ops []o

	for errors.Unwrap(e) != nil {
		var errsError *Error
		if errors.As(e, &errsError) {
			if errsError.Op != "" {
				op := o{Op: string(errsError.Op), Order: i}
				ops = append(ops, op)
			}
		}

		e = errors.Unwrap(e)
		i++
	}

	stack := make([]string, 0, len(ops))
	for _, op := range ops {
		stack = append(stack, op.Op)
	}

	return stack
}

// TopError returns the innermost non-errs error in the chain, which is
// typically the original cause from a driver or client library.
func TopError(err error) error {
	e := err

	for {
		var errsError *Error
		if !errors.As(e, &errsError) {
			return e
		}

		if errsError.Err == nil {
			return errsError
		}

		e = errsError.Err
	}
}
