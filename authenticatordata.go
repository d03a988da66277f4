// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"strings"
)

// AuthenticatorData represents the Web Authentication structure of the same
// name, as defined in http://w3c.github.io/webauthn/#sctn-authenticator-data
//
// Raw holds the exact encoded bytes; attestation signature bases are built
// from Raw, never from a re-encoding.
type AuthenticatorData struct {
	Raw          []byte      // Complete raw authenticator data content.
	RPIDHash     []byte      // SHA-256 hash of the RP ID the credential is scoped to.
	UserPresent  bool        // UP flag.
	UserVerified bool        // UV flag.
	Counter      uint32      // Signature counter.
	AAGUID       []byte      // AAGUID of the authenticator (optional).
	CredentialID []byte      // Identifier of the public key credential source (optional).
	Credential   *Credential // Public key portion of the newly created credential key pair (optional).
}

func parseAuthenticatorData(data []byte) (authnData *AuthenticatorData, rest []byte, err error) {
	if len(data) < 37 {
		return nil, nil, &UnmarshalSyntaxError{Type: "authenticator data", Msg: "unexpected EOF"}
	}

	authnData = &AuthenticatorData{Raw: data}

	authnData.RPIDHash = make([]byte, 32)
	copy(authnData.RPIDHash, data)

	flags := data[32]
	authnData.UserPresent = (flags & 0x01) > 0   // UP: flags bit 0.
	authnData.UserVerified = (flags & 0x04) > 0  // UV: flags bit 2.
	credentialDataIncluded := (flags & 0x40) > 0 // AT: flags bit 6.
	extensionDataIncluded := (flags & 0x80) > 0  // ED: flags bit 7.

	authnData.Counter = binary.BigEndian.Uint32(data[33:37])

	rest = data[37:]

	if credentialDataIncluded {
		if len(rest) < 18 {
			return nil, nil, &UnmarshalSyntaxError{Type: "authenticator data", Msg: "unexpected EOF"}
		}

		authnData.AAGUID = make([]byte, 16)
		copy(authnData.AAGUID, rest)

		idLength := binary.BigEndian.Uint16(rest[16:18])
		if len(rest[18:]) < int(idLength) {
			return nil, nil, &UnmarshalSyntaxError{Type: "authenticator data", Msg: "unexpected EOF"}
		}
		authnData.CredentialID = make([]byte, idLength)
		copy(authnData.CredentialID, rest[18:])

		if authnData.Credential, rest, err = ParseCredential(rest[18+int(idLength):]); err != nil {
			return nil, nil, err
		}
	}

	if extensionDataIncluded {
		return nil, nil, &UnsupportedFeatureError{Feature: "authenticator data extension"}
	}

	return
}

// TokenBindingStatus represents the Web Authentication enumeration of the
// same name, as defined in http://w3c.github.io/webauthn/#dictionary-client-data
type TokenBindingStatus string

// TokenBindingStatus enumeration.
const (
	TokenBindingPresent   TokenBindingStatus = "present"
	TokenBindingSupported TokenBindingStatus = "supported"
)

// TokenBinding represents the Web Authentication structure of the same name,
// as defined in http://w3c.github.io/webauthn/#dictionary-client-data
type TokenBinding struct {
	Status TokenBindingStatus `json:"status"`
	ID     string             `json:"id"` // Required if status is "present".
}

// CollectedClientData represents the Web Authentication structure of the
// same name, as defined in http://w3c.github.io/webauthn/#dictionary-client-data
type CollectedClientData struct {
	Raw          []byte        `json:"-"`            // Complete raw client data content.
	Type         string        `json:"type"`         // "webauthn.create" when creating new credentials.
	Challenge    string        `json:"challenge"`    // base64 url encoded challenge provided by the Relying Party.
	Origin       string        `json:"origin"`       // Fully qualified origin of the requester.
	TokenBinding *TokenBinding `json:"tokenBinding"` // Absent when the client doesn't support token binding.
}

func parseClientData(data []byte) (clientData *CollectedClientData, err error) {
	clientData = &CollectedClientData{Raw: data}
	if err = json.Unmarshal(data, &clientData); err != nil {
		return nil, &UnmarshalSyntaxError{Type: "client data", Msg: err.Error()}
	}
	if len(clientData.Type) == 0 {
		return nil, &UnmarshalMissingFieldError{Type: "client data", Field: "type"}
	}
	if len(clientData.Challenge) == 0 {
		return nil, &UnmarshalMissingFieldError{Type: "client data", Field: "challenge"}
	}
	if len(clientData.Origin) == 0 {
		return nil, &UnmarshalMissingFieldError{Type: "client data", Field: "origin"}
	}
	if clientData.TokenBinding != nil && len(clientData.TokenBinding.Status) == 0 {
		return nil, &UnmarshalMissingFieldError{Type: "client data", Field: "token binding status"}
	}
	return
}

// base64DecodeString tolerates standard and URL alphabets, with or without
// padding, because authenticator client implementations differ.
func base64DecodeString(s string) ([]byte, error) {
	if len(s) > 1 {
		if s[len(s)-2] == '=' {
			s = s[:len(s)-2]
		} else if s[len(s)-1] == '=' {
			s = s[:len(s)-1]
		}
	}

	s = strings.Replace(s, "-", "+", -1)
	s = strings.Replace(s, "_", "/", -1)

	return base64.RawStdEncoding.DecodeString(s)
}
