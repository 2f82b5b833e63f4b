// Copyright 2025 CardinalHQ, Inc
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

package brokenwing

import (
	"errors"
	"fmt"
)

// Error kinds. Every validation failure wraps exactly one of these, so
// callers can match with errors.Is.
var (
	ErrInvalidSampleSize   = errors.New("invalid sample size")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrDegenerateSample    = errors.New("degenerate sample")
	ErrInvalidBinCount     = errors.New("invalid bin count")
	ErrEmptySample         = errors.New("empty sample")
	ErrUnknownDistribution = errors.New("unknown distribution")
)

// ValidationError is a structured validation failure: a kind plus a
// human-readable message.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func NewSampleSizeError(n int, limit int) error {
	return &ValidationError{
		Kind:    ErrInvalidSampleSize,
		Field:   "n",
		Message: fmt.Sprintf("must be greater than 0 and less than %d, got %d", limit, n),
	}
}

func NewParameterError(field string, format string, args ...any) error {
	return &ValidationError{
		Kind:    ErrInvalidParameter,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewBinCountError(k int, valid []int) error {
	return &ValidationError{
		Kind:    ErrInvalidBinCount,
		Field:   "k",
		Message: fmt.Sprintf("must be one of %v, got %d", valid, k),
	}
}

type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode distribution spec for %q: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
