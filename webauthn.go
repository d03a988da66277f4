// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

/*
Package webauthn provides server-side registration support for clients using
FIDO2 security keys and platform authenticators.  It is decoupled from
net/http for easy integration with existing projects.

Attestation statement formats are modular so projects only import what is
needed.  The "none" format is built in; the packed format is provided by the
packed subpackage and registers itself when imported:

	import _ "github.com/keycove/webauthn/packed"

Statement verification distinguishes two failure classes: a
*VerificationError is an ordinary rejection of the credential, while an
*UnsupportedFeatureError (for example, ECDAA attestation) means the
statement cannot be processed at all and the registration must be refused.
*/
package webauthn

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
)

// User represents user data for which the Relying Party requests attestation.
type User struct {
	ID            []byte
	Name          string
	Icon          string
	DisplayName   string
	CredentialIDs [][]byte
}

// AttestationExpectedData represents the data the Relying Party expects a
// registration response to match.
type AttestationExpectedData struct {
	Origin           string
	RPID             string
	CredentialAlgs   []int
	Challenge        string
	UserVerification UserVerificationRequirement
}

// NewAttestationOptions returns PublicKeyCredentialCreationOptions built
// from config and user, with a freshly generated random challenge.
func NewAttestationOptions(config *Config, user *User) (*PublicKeyCredentialCreationOptions, error) {
	if len(user.Name) == 0 {
		return nil, errors.New("user name is required")
	}
	if len(user.ID) == 0 {
		return nil, errors.New("user id is required")
	}
	if len(user.DisplayName) == 0 {
		return nil, errors.New("user display name is required")
	}

	challenge := make([]byte, config.ChallengeLength)
	if _, err := rand.Read(challenge); err != nil {
		return nil, errors.New("failed to generate challenge: " + err.Error())
	}

	var excludeCredentials []PublicKeyCredentialDescriptor
	for _, id := range user.CredentialIDs {
		excludeCredentials = append(excludeCredentials, PublicKeyCredentialDescriptor{Type: PublicKeyCredentialTypePublicKey, ID: id})
	}

	var credentialParams []PublicKeyCredentialParameters
	for _, alg := range config.CredentialAlgs {
		credentialParams = append(credentialParams, PublicKeyCredentialParameters{PublicKeyCredentialTypePublicKey, alg})
	}

	options := &PublicKeyCredentialCreationOptions{
		RP: PublicKeyCredentialRpEntity{
			Name: config.RPName,
			Icon: config.RPIcon,
			ID:   config.RPID,
		},
		User: PublicKeyCredentialUserEntity{
			Name:        user.Name,
			Icon:        user.Icon,
			ID:          user.ID,
			DisplayName: user.DisplayName,
		},
		Challenge:          challenge,
		PubKeyCredParams:   credentialParams,
		Timeout:            config.Timeout,
		ExcludeCredentials: excludeCredentials,
		AuthenticatorSelection: AuthenticatorSelectionCriteria{
			AuthenticatorAttachment: config.AuthenticatorAttachment,
			RequireResidentKey:      config.ResidentKey == ResidentKeyRequired,
			ResidentKey:             config.ResidentKey,
			UserVerification:        config.UserVerification,
		},
		Attestation: config.Attestation,
	}

	return options, nil
}

// ParseAttestation parses a credential registration response and returns a
// PublicKeyCredentialAttestation.
func ParseAttestation(r io.Reader) (*PublicKeyCredentialAttestation, error) {
	var credentialAttestation PublicKeyCredentialAttestation
	if err := json.NewDecoder(r).Decode(&credentialAttestation); err != nil {
		return nil, err
	}
	return &credentialAttestation, nil
}

// VerifyAttestation verifies a registration response against expected data
// and returns attestation type and trust path, as defined in
// http://w3c.github.io/webauthn/#sctn-registering-a-new-credential
func VerifyAttestation(credentialAttestation *PublicKeyCredentialAttestation, expected *AttestationExpectedData) (attType AttestationType, trustPath interface{}, err error) {
	// Verify that the value of C.type is webauthn.create.
	if credentialAttestation.ClientData.Type != "webauthn.create" {
		err = &VerificationError{Type: "attestation", Field: "client data type", Msg: "expected \"webauthn.create\", got \"" + credentialAttestation.ClientData.Type + "\""}
		return
	}

	// Verify that the value of C.challenge equals the base64url encoding of options.challenge.
	if credentialAttestation.ClientData.Challenge != expected.Challenge {
		err = &VerificationError{Type: "attestation", Field: "client data challenge", Msg: "client data challenge does not match expected challenge"}
		return
	}

	// Verify that the value of C.origin matches the Relying Party's origin.
	if credentialAttestation.ClientData.Origin != expected.Origin {
		err = &VerificationError{Type: "attestation", Field: "client data origin", Msg: "expected \"" + expected.Origin + "\", got \"" + credentialAttestation.ClientData.Origin + "\""}
		return
	}

	// Verify that authData's credential id matches the credential's raw id.
	if !bytes.Equal(credentialAttestation.RawID, credentialAttestation.AuthnData.CredentialID) {
		err = &VerificationError{Type: "attestation", Field: "credential ID", Msg: "attestation's raw ID does not match credential ID"}
		return
	}

	// Verify that the rpIdHash in authData is the SHA-256 hash of the RP ID
	// expected by the Relying Party.
	computedRPIDHash := sha256.Sum256([]byte(expected.RPID))
	if !bytes.Equal(credentialAttestation.AuthnData.RPIDHash, computedRPIDHash[:]) {
		err = &VerificationError{Type: "attestation", Field: "rp ID", Msg: "authenticator data's rp ID hash does not match computed rp ID hash"}
		return
	}

	// Verify that the User Present bit of the flags in authData is set.
	if !credentialAttestation.AuthnData.UserPresent {
		err = &VerificationError{Type: "attestation", Field: "user present", Msg: "user wasn't present"}
		return
	}

	// If user verification is required for this registration, verify that the
	// User Verified bit of the flags in authData is set.
	if expected.UserVerification == UserVerificationRequired && !credentialAttestation.AuthnData.UserVerified {
		err = &VerificationError{Type: "attestation", Field: "user verification", Msg: "user didn't verify"}
		return
	}

	// Verify that the credential public key algorithm matches one of the
	// items in options.pubKeyCredParams.
	foundAlg := false
	for _, alg := range expected.CredentialAlgs {
		if alg == credentialAttestation.AuthnData.Credential.COSEAlgorithm {
			foundAlg = true
			break
		}
	}
	if !foundAlg {
		err = &VerificationError{Type: "attestation", Field: "credential algorithm", Msg: "credential algorithm is not among options.pubKeyCredParams"}
		return
	}

	return credentialAttestation.VerifyAttestationStatement()
}
