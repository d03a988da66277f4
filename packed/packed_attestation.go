// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

// Package packed provides verification of "packed" attestation statements.
// Importing it registers the format with the webauthn package.
package packed

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/keycove/webauthn"
)

type packedAttestationStatement struct {
	coseAlg    int      // COSE identifier of the algorithm used to generate the attestation signature.
	sig        []byte   // Attestation signature.
	x5c        [][]byte // DER-encoded attestation certificate chain, leaf first; parsed once per Verify call.
	ecdaaKeyID []byte   // Identifier of the ECDAA-Issuer public key; non-nil, possibly empty, when present on the wire.
}

func parseAttestation(data []byte) (webauthn.AttestationStatement, error) {
	type rawAttStmt struct {
		Alg        int      `cbor:"alg"`
		Sig        []byte   `cbor:"sig"`
		X5C        [][]byte `cbor:"x5c"`
		ECDAAKeyID []byte   `cbor:"ecdaaKeyId"`
	}
	var raw rawAttStmt
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, &webauthn.UnmarshalSyntaxError{Type: "packed attestation", Msg: err.Error()}
	}
	return &packedAttestationStatement{
		coseAlg:    raw.Alg,
		sig:        raw.Sig,
		x5c:        raw.X5C,
		ecdaaKeyID: raw.ECDAAKeyID,
	}, nil
}

// Verify implements the webauthn.AttestationStatement interface.  It follows
// the packed attestation statement verification procedure defined in
// http://w3c.github.io/webauthn/#sctn-packed-attestation
//
// Steps run in a fixed order and the first failing step decides the result:
// ECDAA guard, statement format, key validity, certificate requirements,
// signature.  Only then is the attestation type derived from the statement's
// shape: a certificate chain yields Basic_or_AttCA with the full chain as
// trust path, no chain yields Self with a nil trust path.
func (attStmt *packedAttestationStatement) Verify(clientDataHash []byte, authnData *webauthn.AuthenticatorData) (attType webauthn.AttestationType, trustPath interface{}, err error) {
	// ECDAA cannot be processed at all.  This is reported before any
	// validity check so callers can tell "unsupported" from "invalid".
	// Presence decides, not content: an empty ecdaaKeyId still selects
	// ECDAA.
	if attStmt.ecdaaKeyID != nil {
		err = &webauthn.UnsupportedFeatureError{Feature: "Elliptic Curve based Direct Anonymous Attestation (ECDAA)"}
		return
	}

	if err = attStmt.validFormat(); err != nil {
		return
	}

	// The chain is parsed exactly once and the parsed certificates are
	// reused by every following step.  They live only for this call.
	certs, err := attStmt.certificateChain()
	if err != nil {
		return
	}

	if err = validEllipticCurveKeys(certs, authnData.Credential); err != nil {
		return
	}

	if err = validCertificateRequirements(certs); err != nil {
		return
	}

	if err = attStmt.validSignature(certs, clientDataHash, authnData); err != nil {
		return
	}

	if len(certs) > 0 {
		return webauthn.AttestationTypeBasicOrAttCA, certs, nil
	}
	return webauthn.AttestationTypeSelf, nil, nil
}

// validFormat checks that required fields are present and that the
// certificate chain and ECDAA key identifier are mutually exclusive.
func (attStmt *packedAttestationStatement) validFormat() error {
	if attStmt.coseAlg == 0 {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "alg", Msg: "missing required field"}
	}
	if len(attStmt.sig) == 0 {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "sig", Msg: "missing required field"}
	}
	attestationForms := 0
	if len(attStmt.x5c) > 0 {
		attestationForms++
	}
	if attStmt.ecdaaKeyID != nil {
		attestationForms++
	}
	if attestationForms >= 2 {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "x5c", Msg: "x5c and ecdaaKeyId are mutually exclusive"}
	}
	return nil
}

// certificateChain parses the raw DER chain, leaf first.  Malformed
// certificate bytes are a verification rejection, never a fault.
func (attStmt *packedAttestationStatement) certificateChain() ([]*x509.Certificate, error) {
	if len(attStmt.x5c) == 0 {
		return nil, nil
	}
	certs := make([]*x509.Certificate, len(attStmt.x5c))
	for i, der := range attStmt.x5c {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, &webauthn.VerificationError{Type: "packed attestation", Field: fmt.Sprintf("x5c[%d]", i), Msg: err.Error()}
		}
		certs[i] = c
	}
	return certs, nil
}

// validEllipticCurveKeys checks that every public key relevant to the chosen
// attestation path is an elliptic-curve key whose point lies on its declared
// curve.  With a certificate chain that is one key per certificate; without
// one it is the credential's own key.
func validEllipticCurveKeys(certs []*x509.Certificate, credential *webauthn.Credential) error {
	if len(certs) == 0 {
		return validEllipticCurveKey("credential public key", credential.PublicKey)
	}
	for i, c := range certs {
		if err := validEllipticCurveKey(fmt.Sprintf("x5c[%d] public key", i), c.PublicKey); err != nil {
			return err
		}
	}
	return nil
}

func validEllipticCurveKey(field string, publicKey interface{}) error {
	pk, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return &webauthn.VerificationError{Type: "packed attestation", Field: field, Msg: "public key is not an Elliptic Curve public key"}
	}
	if pk.Curve == nil || pk.X == nil || pk.Y == nil {
		return &webauthn.VerificationError{Type: "packed attestation", Field: field, Msg: "public key is malformed"}
	}
	if !pk.Curve.IsOnCurve(pk.X, pk.Y) {
		return &webauthn.VerificationError{Type: "packed attestation", Field: field, Msg: "public key point is not on its declared curve"}
	}
	return nil
}

// validCertificateRequirements enforces the attestation certificate profile
// on the leaf certificate, when one exists.
func validCertificateRequirements(certs []*x509.Certificate) error {
	if len(certs) == 0 {
		return nil
	}
	leaf := certs[0]

	// Version MUST be set to 3 (ASN.1 INTEGER value 2).
	if leaf.Version != 3 {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "certificate version", Msg: fmt.Sprintf("expected certificate version 3, got version %d", leaf.Version)}
	}

	// Subject-OU MUST be the literal string "Authenticator Attestation".
	if ou := leaf.Subject.OrganizationalUnit; len(ou) == 0 || ou[0] != "Authenticator Attestation" {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "certificate organizational unit", Msg: "certificate \"organizational unit\" must be \"Authenticator Attestation\""}
	}

	// The Basic Constraints extension MUST have the CA component set to false.
	if !leaf.BasicConstraintsValid || leaf.IsCA {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "certificate basic constraints", Msg: "certificate basic constraints must have the CA component set to false"}
	}

	return nil
}

// validSignature verifies sig over the concatenation of the raw
// authenticator data and the client data hash.  The verifying key is the
// leaf certificate's public key when a chain was supplied, else the
// credential's own key; the digest is fixed at SHA-256.
func (attStmt *packedAttestationStatement) validSignature(certs []*x509.Certificate, clientDataHash []byte, authnData *webauthn.AuthenticatorData) error {
	verificationData := make([]byte, 0, len(authnData.Raw)+len(clientDataHash))
	verificationData = append(verificationData, authnData.Raw...)
	verificationData = append(verificationData, clientDataHash...)
	digest := sha256.Sum256(verificationData)

	var publicKey interface{}
	if len(certs) > 0 {
		publicKey = certs[0].PublicKey
	} else {
		publicKey = authnData.Credential.PublicKey
	}

	// Key validity already ran, so the assertion cannot fail here.
	pk, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "signature", Msg: "verification key is not an Elliptic Curve public key"}
	}
	if !ecdsa.VerifyASN1(pk, digest[:], attStmt.sig) {
		return &webauthn.VerificationError{Type: "packed attestation", Field: "signature", Msg: "ECDSA signature verification failed"}
	}
	return nil
}

func init() {
	webauthn.RegisterAttestationFormat("packed", parseAttestation)
}
