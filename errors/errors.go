/*
 * Clarwasm - The Clarity-to-WebAssembly compiler
 *
 * Copyright Stacks Open Internet Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/xerrors"
)

// InternalErrorMessagePrefix is a prefix for internal error messages.
const InternalErrorMessagePrefix = "internal error:"

// InternalError is an implementation error, e.g. an unreachable code path
// (UnreachableError). A program should never throw an InternalError in an
// ideal world.
//
// InternalError s must always be propagated up the call stack,
// and must not be swallowed.
type InternalError interface {
	error
	IsInternalError()
}

// UserError is an error in the user-provided program,
// e.g. an ill-typed expression that should have been rejected earlier.
type UserError interface {
	error
	IsUserError()
}

// SecondaryError is an interface for errors that provide a secondary error
// message, e.g. a suggestion for how to fix the problem
type SecondaryError interface {
	SecondaryError() string
}

// UnreachableError

// UnreachableError is an internal error which should have never occurred
// due to a programming error in the compiler itself.
//
// NOTE: this error is not used for errors because of bugs
// in a user-provided program.
type UnreachableError struct {
	Stack []byte
}

var _ InternalError = UnreachableError{}

func (e UnreachableError) Error() string {
	return fmt.Sprintf("unreachable\n%s", e.Stack)
}

func (e UnreachableError) IsInternalError() {}

func NewUnreachableError() *UnreachableError {
	return &UnreachableError{Stack: debug.Stack()}
}

// UnexpectedError is the default implementation of the InternalError
// interface. It's a generic error that wraps an implementation error.
type UnexpectedError struct {
	Err error
}

var _ InternalError = UnexpectedError{}

func NewUnexpectedError(message string, arg ...any) UnexpectedError {
	return UnexpectedError{
		Err: xerrors.Errorf(message, arg...),
	}
}

func NewUnexpectedErrorFromCause(err error) UnexpectedError {
	return UnexpectedError{
		Err: err,
	}
}

func (e UnexpectedError) Unwrap() error {
	return e.Err
}

func (e UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %s", e.Err.Error())
}

func (e UnexpectedError) IsInternalError() {}
