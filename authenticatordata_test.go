// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

var testRPIDHash = sha256.Sum256([]byte("example.com"))

// marshalTestCOSEKey returns key encoded in COSE_Key format (EC2, ES256).
func marshalTestCOSEKey(t *testing.T, key *ecdsa.PublicKey) []byte {
	t.Helper()
	data, err := cbor.Marshal(map[int]interface{}{
		1:  2,  // kty: EC2
		3:  -7, // alg: ES256
		-1: 1,  // crv: P-256
		-2: key.X.Bytes(),
		-3: key.Y.Bytes(),
	})
	if err != nil {
		t.Fatalf("failed to marshal COSE key: %q", err)
	}
	return data
}

// buildTestAuthnData returns raw authenticator data with the given flags,
// and attested credential data when the AT flag (0x40) is set.
func buildTestAuthnData(t *testing.T, flags byte, coseKey []byte) []byte {
	t.Helper()
	data := make([]byte, 0, 37+18+len(coseKey))
	data = append(data, testRPIDHash[:]...)
	data = append(data, flags)
	counter := make([]byte, 4)
	binary.BigEndian.PutUint32(counter, 42)
	data = append(data, counter...)
	if flags&0x40 > 0 {
		aaguid := make([]byte, 16)
		data = append(data, aaguid...)
		idLength := make([]byte, 2)
		binary.BigEndian.PutUint16(idLength, 4)
		data = append(data, idLength...)
		data = append(data, 0x01, 0x02, 0x03, 0x04)
		data = append(data, coseKey...)
	}
	return data
}

func TestParseAuthenticatorData(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %q", err)
	}
	raw := buildTestAuthnData(t, 0x45, marshalTestCOSEKey(t, &key.PublicKey)) // UP, UV, AT

	authnData, rest, err := parseAuthenticatorData(raw)
	if err != nil {
		t.Fatalf("parseAuthenticatorData() returns error %q", err)
	}
	if len(rest) != 0 {
		t.Errorf("rest length %d, want 0", len(rest))
	}
	if !authnData.UserPresent {
		t.Errorf("user present flag not set")
	}
	if !authnData.UserVerified {
		t.Errorf("user verified flag not set")
	}
	if authnData.Counter != 42 {
		t.Errorf("counter %d, want 42", authnData.Counter)
	}
	if len(authnData.CredentialID) != 4 {
		t.Errorf("credential id length %d, want 4", len(authnData.CredentialID))
	}
	if authnData.Credential == nil {
		t.Fatal("credential is nil")
	}
	pk, ok := authnData.Credential.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		t.Fatalf("credential public key type %T, want *ecdsa.PublicKey", authnData.Credential.PublicKey)
	}
	if pk.X.Cmp(key.X) != 0 || pk.Y.Cmp(key.Y) != 0 {
		t.Errorf("credential public key does not match generated key")
	}
}

func TestParseAuthenticatorDataNoCredential(t *testing.T) {
	raw := buildTestAuthnData(t, 0x01, nil) // UP only

	authnData, _, err := parseAuthenticatorData(raw)
	if err != nil {
		t.Fatalf("parseAuthenticatorData() returns error %q", err)
	}
	if authnData.Credential != nil {
		t.Errorf("credential %v, want nil", authnData.Credential)
	}
	if authnData.UserVerified {
		t.Errorf("user verified flag set")
	}
}

// Credential ID lengths near the 16-bit maximum must not wrap the offset at
// which the COSE key is parsed.
func TestParseAuthenticatorDataLongCredentialID(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %q", err)
	}
	coseKey := marshalTestCOSEKey(t, &key.PublicKey)

	credentialID := make([]byte, 65530)
	for i := range credentialID {
		credentialID[i] = byte(i)
	}
	data := make([]byte, 0, 37+18+len(credentialID)+len(coseKey))
	data = append(data, testRPIDHash[:]...)
	data = append(data, 0x41) // UP, AT
	counter := make([]byte, 4)
	binary.BigEndian.PutUint32(counter, 42)
	data = append(data, counter...)
	data = append(data, make([]byte, 16)...) // aaguid
	idLength := make([]byte, 2)
	binary.BigEndian.PutUint16(idLength, uint16(len(credentialID)))
	data = append(data, idLength...)
	data = append(data, credentialID...)
	data = append(data, coseKey...)

	authnData, rest, err := parseAuthenticatorData(data)
	if err != nil {
		t.Fatalf("parseAuthenticatorData() returns error %q", err)
	}
	if len(rest) != 0 {
		t.Errorf("rest length %d, want 0", len(rest))
	}
	if len(authnData.CredentialID) != len(credentialID) {
		t.Errorf("credential id length %d, want %d", len(authnData.CredentialID), len(credentialID))
	}
	if authnData.Credential == nil {
		t.Fatal("credential is nil")
	}
}

func TestParseAuthenticatorDataErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr interface{}
	}{
		{"empty", []byte{}, &UnmarshalSyntaxError{}},
		{"truncated header", make([]byte, 36), &UnmarshalSyntaxError{}},
		{"truncated credential data", buildTestAuthnData(t, 0x41, nil)[:40], &UnmarshalSyntaxError{}},
		{"extension data", buildTestAuthnData(t, 0x81, nil), &UnsupportedFeatureError{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseAuthenticatorData(tc.data); err == nil {
				t.Fatal("parseAuthenticatorData() returns no error")
			} else if !errorIs(err, tc.wantErr) {
				t.Errorf("parseAuthenticatorData() returns error %v, want %T", err, tc.wantErr)
			}
		})
	}
}

func TestParseClientData(t *testing.T) {
	clientData, err := parseClientData([]byte(`{"type":"webauthn.create","challenge":"Y2hhbGxlbmdl","origin":"https://example.com"}`))
	if err != nil {
		t.Fatalf("parseClientData() returns error %q", err)
	}
	if clientData.Type != "webauthn.create" {
		t.Errorf("type %q, want \"webauthn.create\"", clientData.Type)
	}
	if clientData.Challenge != "Y2hhbGxlbmdl" {
		t.Errorf("challenge %q, want \"Y2hhbGxlbmdl\"", clientData.Challenge)
	}
	if clientData.Origin != "https://example.com" {
		t.Errorf("origin %q, want \"https://example.com\"", clientData.Origin)
	}
}

func TestParseClientDataErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"missing type", `{"challenge":"Y2hhbGxlbmdl","origin":"https://example.com"}`},
		{"missing challenge", `{"type":"webauthn.create","origin":"https://example.com"}`},
		{"missing origin", `{"type":"webauthn.create","challenge":"Y2hhbGxlbmdl"}`},
		{"missing token binding status", `{"type":"webauthn.create","challenge":"Y2hhbGxlbmdl","origin":"https://example.com","tokenBinding":{}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseClientData([]byte(tc.data)); err == nil {
				t.Fatal("parseClientData() returns no error")
			}
		})
	}
}

// errorIs reports whether err has the same concrete type as target.
func errorIs(err error, target interface{}) bool {
	switch target.(type) {
	case *UnmarshalSyntaxError:
		var e *UnmarshalSyntaxError
		return errors.As(err, &e)
	case *UnmarshalMissingFieldError:
		var e *UnmarshalMissingFieldError
		return errors.As(err, &e)
	case *UnmarshalBadDataError:
		var e *UnmarshalBadDataError
		return errors.As(err, &e)
	case *UnsupportedFeatureError:
		var e *UnsupportedFeatureError
		return errors.As(err, &e)
	case *UnregisteredFeatureError:
		var e *UnregisteredFeatureError
		return errors.As(err, &e)
	case *VerificationError:
		var e *VerificationError
		return errors.As(err, &e)
	default:
		return false
	}
}
