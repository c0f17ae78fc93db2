package model

import "errors"

var (
	// ErrNotStruct is returned when the composed type is not a struct.
	ErrNotStruct = errors.New("model: composed type must be a struct")
	// ErrAlreadyComposed is returned when a type is composed a second time.
	ErrAlreadyComposed = errors.New("model: type already composed")
	// ErrUnknownMember is returned when an annotation names a member the
	// struct does not have.
	ErrUnknownMember = errors.New("model: unknown member")
	// ErrNotCallable is returned when a member tagged as an action, flow,
	// or view does not resolve to something callable.
	ErrNotCallable = errors.New("model: member is not callable")
	// ErrInvalidDescriptor is returned when a type annotation cannot be
	// resolved to a runtime type.
	ErrInvalidDescriptor = errors.New("model: invalid type descriptor")
)
