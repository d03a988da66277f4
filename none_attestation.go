// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import (
	"bytes"
	"fmt"
)

// CBOR encoding of an empty map, the only legal "none" statement body.
var noneAttestationStatementCBORBytes = []byte{0xa0}

type noneAttestationStatement struct {
}

func parseNoneAttestation(data []byte) (AttestationStatement, error) {
	if !bytes.Equal(data, noneAttestationStatementCBORBytes) {
		return nil, &UnmarshalSyntaxError{Type: "none attestation", Msg: fmt.Sprintf("got %02x, want %02x", data, noneAttestationStatementCBORBytes)}
	}
	return &noneAttestationStatement{}, nil
}

// Verify implements the AttestationStatement interface.  It follows the none
// attestation statement verification procedure defined in
// http://w3c.github.io/webauthn/#sctn-none-attestation
func (attStmt *noneAttestationStatement) Verify(clientDataHash []byte, authnData *AuthenticatorData) (attType AttestationType, trustPath interface{}, err error) {
	return AttestationTypeNone, nil, nil
}

func init() {
	RegisterAttestationFormat("none", parseNoneAttestation)
}
