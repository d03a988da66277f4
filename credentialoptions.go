// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import (
	"encoding/base64"
	"errors"
	"strconv"
)

type bufferString []byte

// MarshalJSON implements the json.Marshaler interface.  It returns a quoted
// base64 URL encoded string.
func (b bufferString) MarshalJSON() ([]byte, error) {
	s := base64.RawURLEncoding.EncodeToString(b)
	return []byte("\"" + s + "\""), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.  The data is
// expected to be base64 URL encoded.
func (b *bufferString) UnmarshalJSON(data []byte) (err error) {
	if len(data) < 2 {
		return errors.New("json: illegal data " + string(data))
	}
	if data[0] != '"' {
		return errors.New("json: illegal data at input byte 0")
	}
	if data[len(data)-1] != '"' {
		return errors.New("json: illegal data at input byte " + strconv.Itoa(len(data)-1))
	}
	*b, err = base64.RawURLEncoding.DecodeString(string(data[1 : len(data)-1]))
	return err
}

// PublicKeyCredentialRpEntity represents the Web Authentication structure of
// the same name, as defined in http://w3c.github.io/webauthn/#dictionary-rp-credential-params
type PublicKeyCredentialRpEntity struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
	ID   string `json:"id,omitempty"` // Relying Party unique identifier (effective domain).
}

// PublicKeyCredentialUserEntity represents the Web Authentication structure
// of the same name, as defined in http://w3c.github.io/webauthn/#dictionary-user-credential-params
type PublicKeyCredentialUserEntity struct {
	Name        string       `json:"name"`
	Icon        string       `json:"icon,omitempty"`
	ID          bufferString `json:"id"` // User handle, SHOULD NOT include personally identifying information.
	DisplayName string       `json:"displayName"`
}

// AuthenticatorAttachment represents the Web Authentication enumeration of
// the same name, as defined in http://w3c.github.io/webauthn/#enum-attachment
type AuthenticatorAttachment string

// AuthenticatorAttachment enumeration.
const (
	AuthenticatorPlatform      AuthenticatorAttachment = "platform"
	AuthenticatorCrossPlatform AuthenticatorAttachment = "cross-platform"
)

// UserVerificationRequirement represents the Web Authentication enumeration
// of the same name, as defined in http://w3c.github.io/webauthn/#enum-userVerificationRequirement
type UserVerificationRequirement string

// UserVerificationRequirement enumeration.
const (
	UserVerificationRequired    UserVerificationRequirement = "required"
	UserVerificationPreferred   UserVerificationRequirement = "preferred"
	UserVerificationDiscouraged UserVerificationRequirement = "discouraged"
)

// ResidentKeyRequirement represents the Web Authentication enumeration of
// the same name, as defined in http://w3c.github.io/webauthn/#enum-residentKeyRequirement
type ResidentKeyRequirement string

// ResidentKeyRequirement enumeration.
const (
	ResidentKeyDiscouraged ResidentKeyRequirement = "discouraged"
	ResidentKeyPreferred   ResidentKeyRequirement = "preferred"
	ResidentKeyRequired    ResidentKeyRequirement = "required"
)

// PublicKeyCredentialType represents the Web Authentication enumeration of
// the same name, as defined in http://w3c.github.io/webauthn/#enum-credentialType
type PublicKeyCredentialType string

// PublicKeyCredentialType enumeration.
const (
	PublicKeyCredentialTypePublicKey PublicKeyCredentialType = "public-key"
)

// PublicKeyCredentialParameters represents the Web Authentication structure
// of the same name, as defined in http://w3c.github.io/webauthn/#dictionary-credential-params
type PublicKeyCredentialParameters struct {
	Type PublicKeyCredentialType `json:"type"`
	// Alg identifies a cryptographic algorithm registered in the IANA COSE
	// Algorithms registry, specifying the signature algorithm the newly
	// generated credential will be used with.
	Alg int `json:"alg"`
}

// AuthenticatorTransport represents the Web Authentication enumeration of
// the same name, as defined in http://w3c.github.io/webauthn/#enum-transport
type AuthenticatorTransport string

// AuthenticatorTransport enumeration.
const (
	AuthenticatorUSB      AuthenticatorTransport = "usb"
	AuthenticatorNFC      AuthenticatorTransport = "nfc"
	AuthenticatorBLE      AuthenticatorTransport = "ble"
	AuthenticatorInternal AuthenticatorTransport = "internal"
)

// PublicKeyCredentialDescriptor represents the Web Authentication structure
// of the same name, as defined in http://w3c.github.io/webauthn/#dictionary-credential-descriptor
type PublicKeyCredentialDescriptor struct {
	Type       PublicKeyCredentialType  `json:"type"`
	ID         bufferString             `json:"id"`
	Transports []AuthenticatorTransport `json:"transports,omitempty"`
}

// AuthenticatorSelectionCriteria represents the Web Authentication structure
// of the same name, as defined in http://w3c.github.io/webauthn/#dictionary-authenticatorSelection
type AuthenticatorSelectionCriteria struct {
	AuthenticatorAttachment AuthenticatorAttachment     `json:"authenticatorAttachment,omitempty"`
	RequireResidentKey      bool                        `json:"requireResidentKey,omitempty"` // Superseded by ResidentKey.
	ResidentKey             ResidentKeyRequirement      `json:"residentKey,omitempty"`
	UserVerification        UserVerificationRequirement `json:"userVerification,omitempty"`
}

// AttestationConveyancePreference represents the Web Authentication
// enumeration of the same name, as defined in http://w3c.github.io/webauthn/#enum-attestation-convey
type AttestationConveyancePreference string

// AttestationConveyancePreference enumeration.
const (
	AttestationNone     AttestationConveyancePreference = "none"
	AttestationIndirect AttestationConveyancePreference = "indirect"
	AttestationDirect   AttestationConveyancePreference = "direct"
)

// PublicKeyCredentialCreationOptions represents the Web Authentication
// structure of the same name, as defined in
// http://w3c.github.io/webauthn/#dictionary-makecredentialoptions
// Extensions are not supported.
type PublicKeyCredentialCreationOptions struct {
	RP                     PublicKeyCredentialRpEntity     `json:"rp"`
	User                   PublicKeyCredentialUserEntity   `json:"user"`
	Challenge              bufferString                    `json:"challenge"`
	PubKeyCredParams       []PublicKeyCredentialParameters `json:"pubKeyCredParams"` // Ordered from most to least preferred.
	Timeout                uint64                          `json:"timeout,omitempty"`
	ExcludeCredentials     []PublicKeyCredentialDescriptor `json:"excludeCredentials,omitempty"`
	AuthenticatorSelection AuthenticatorSelectionCriteria  `json:"authenticatorSelection,omitempty"`
	Attestation            AttestationConveyancePreference `json:"attestation,omitempty"`
}
