// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import "strings"

// Errors returned by this package and its attestation format packages fall
// into two classes.  Verification rejections (*VerificationError and the
// Unmarshal* types) are ordinary negative outcomes: the relying party
// rejects the credential and moves on.  *UnsupportedFeatureError is fatal:
// the statement asks for a capability this library does not implement, so
// the caller cannot decide validity at all and must reject the registration
// outright.  Use errors.As to tell the classes apart.

// UnmarshalSyntaxError is returned when webauthn data cannot be decoded.
type UnmarshalSyntaxError struct {
	Type  string
	Field string
	Msg   string
}

func (e *UnmarshalSyntaxError) Error() string {
	if e.Field == "" {
		return "webauthn/" + errorSubject(e.Type) + ": failed to unmarshal: " + e.Msg
	}
	return "webauthn/" + errorSubject(e.Type) + ": failed to unmarshal " + e.Field + ": " + e.Msg
}

// UnmarshalMissingFieldError is returned when a required field is absent.
type UnmarshalMissingFieldError struct {
	Type  string
	Field string
}

func (e *UnmarshalMissingFieldError) Error() string {
	return "webauthn/" + errorSubject(e.Type) + ": missing " + e.Field
}

// UnmarshalBadDataError is returned when decoded data is malformed or
// violates a structural invariant.
type UnmarshalBadDataError struct {
	Type string
	Msg  string
}

func (e *UnmarshalBadDataError) Error() string {
	return "webauthn/" + errorSubject(e.Type) + ": " + e.Msg
}

// UnsupportedFeatureError is returned when input requires a feature this
// library does not implement, such as ECDAA attestation.  It is fatal:
// unlike a verification rejection it means "cannot process", not
// "input is invalid", and callers must not treat it as a plain negative
// verification result.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return "webauthn: " + e.Feature + " is not supported"
}

// UnregisteredFeatureError is returned when input names a feature, such as
// an attestation format or COSE algorithm, that nothing has registered.
type UnregisteredFeatureError struct {
	Feature string
}

func (e *UnregisteredFeatureError) Error() string {
	return "webauthn: " + e.Feature + " is not registered"
}

// VerificationError is returned when a verification step fails.  It is an
// expected, non-exceptional outcome: the credential is rejected.
type VerificationError struct {
	Type  string
	Field string
	Msg   string
}

func (e *VerificationError) Error() string {
	s := "webauthn/" + errorSubject(e.Type) + ": failed to verify " + e.Field
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func errorSubject(typ string) string {
	return strings.Replace(strings.ToLower(typ), " ", "_", -1)
}
