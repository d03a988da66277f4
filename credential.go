// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// Credential is the public key portion of a newly created credential key
// pair, together with the signature algorithm it was declared with.
type Credential struct {
	Raw []byte
	SignatureAlgorithm
	crypto.PublicKey
}

// MarshalPKIXPublicKeyPEM serializes the credential public key to
// PEM-encoded PKIX format.
func (c *Credential) MarshalPKIXPublicKeyPEM() ([]byte, error) {
	publicKeyPKIX, err := x509.MarshalPKIXPublicKey(c.PublicKey)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicKeyPKIX,
	}), nil
}

// Verify verifies signature over message using the credential's public key
// and declared algorithm.
func (c *Credential) Verify(message []byte, signature []byte) error {
	h := c.Hash.New()
	h.Write(message)
	digest := h.Sum(nil)

	switch pk := c.PublicKey.(type) {
	case *rsa.PublicKey:
		if c.IsRSAPSS() {
			return rsa.VerifyPSS(pk, c.Hash, digest, signature, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto})
		}
		return rsa.VerifyPKCS1v15(pk, c.Hash, digest, signature)
	case *ecdsa.PublicKey:
		type ecdsaSignature struct {
			R, S *big.Int
		}
		var ecdsaSig ecdsaSignature
		if rest, err := asn1.Unmarshal(signature, &ecdsaSig); err != nil {
			return err
		} else if len(rest) != 0 {
			return errors.New("trailing data after ECDSA signature")
		}
		if ecdsaSig.R.Sign() <= 0 || ecdsaSig.S.Sign() <= 0 {
			return errors.New("ECDSA signature contained zero or negative values")
		}
		if !ecdsa.Verify(pk, digest, ecdsaSig.R, ecdsaSig.S) {
			return errors.New("ECDSA signature verification failed")
		}
		return nil
	default:
		return &UnsupportedFeatureError{Feature: fmt.Sprintf("credential public key of type %T", c.PublicKey)}
	}
}

// COSE key types from the IANA COSE Key Common Parameters registry.
type coseKeyType int

const (
	coseKeyTypeEllipticCurve coseKeyType = 2
	coseKeyTypeRSA           coseKeyType = 3
)

type coseEllipticCurve int

const (
	coseCurveP256 coseEllipticCurve = 1
	coseCurveP384 coseEllipticCurve = 2
	coseCurveP521 coseEllipticCurve = 3
)

func (crv coseEllipticCurve) curve() elliptic.Curve {
	switch crv {
	case coseCurveP256:
		return elliptic.P256()
	case coseCurveP384:
		return elliptic.P384()
	case coseCurveP521:
		return elliptic.P521()
	default:
		return nil
	}
}

type rawCredential struct {
	Kty    int             `cbor:"1,keyasint"`
	Alg    int             `cbor:"3,keyasint"`
	CrvOrN cbor.RawMessage `cbor:"-1,keyasint"`
	XOrE   cbor.RawMessage `cbor:"-2,keyasint"`
	Y      cbor.RawMessage `cbor:"-3,keyasint"`
}

// ParseCredential parses a credential public key encoded in COSE_Key format
// and returns it along with any trailing bytes.
func ParseCredential(coseKeyData []byte) (c *Credential, rest []byte, err error) {
	var raw rawCredential
	decoder := cbor.NewDecoder(bytes.NewReader(coseKeyData))
	if err = decoder.Decode(&raw); err != nil {
		return nil, nil, &UnmarshalSyntaxError{Type: "credential", Msg: err.Error()}
	}
	rawKey := coseKeyData[:decoder.NumBytesRead()]
	rest = coseKeyData[decoder.NumBytesRead():]

	alg, err := CoseAlgToSignatureAlgorithm(raw.Alg)
	if err != nil {
		return nil, nil, err
	}

	switch coseKeyType(raw.Kty) {
	case coseKeyTypeEllipticCurve:
		c, err = parseECDSACredential(&raw, alg, rawKey)
	case coseKeyTypeRSA:
		c, err = parseRSACredential(&raw, alg, rawKey)
	default:
		err = &UnsupportedFeatureError{Feature: "credential of COSE key type " + strconv.Itoa(raw.Kty) + " and algorithm " + strconv.Itoa(raw.Alg)}
	}
	if err != nil {
		return nil, nil, err
	}
	return c, rest, nil
}

func parseECDSACredential(raw *rawCredential, alg SignatureAlgorithm, coseKeyData []byte) (*Credential, error) {
	if !alg.IsECDSA() {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "COSE key type " + strconv.Itoa(raw.Kty) + " and algorithm " + strconv.Itoa(raw.Alg) + " are mismatched"}
	}
	if raw.CrvOrN == nil {
		return nil, &UnmarshalMissingFieldError{Type: "credential", Field: "ECDSA curve"}
	}
	if raw.XOrE == nil {
		return nil, &UnmarshalMissingFieldError{Type: "credential", Field: "ECDSA x"}
	}
	if raw.Y == nil {
		return nil, &UnmarshalMissingFieldError{Type: "credential", Field: "ECDSA y"}
	}
	var crvID int
	if err := cbor.Unmarshal(raw.CrvOrN, &crvID); err != nil {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "invalid ECDSA curve"}
	}
	curve := coseEllipticCurve(crvID).curve()
	if curve == nil {
		return nil, &UnsupportedFeatureError{Feature: "credential COSE curve " + strconv.Itoa(crvID)}
	}
	var xb []byte
	if err := cbor.Unmarshal(raw.XOrE, &xb); err != nil {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "invalid ECDSA x"}
	}
	var yb []byte
	if err := cbor.Unmarshal(raw.Y, &yb); err != nil {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "invalid ECDSA y"}
	}
	pk := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}
	return &Credential{coseKeyData, alg, pk}, nil
}

func parseRSACredential(raw *rawCredential, alg SignatureAlgorithm, coseKeyData []byte) (*Credential, error) {
	if !alg.IsRSA() {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "COSE key type " + strconv.Itoa(raw.Kty) + " and algorithm " + strconv.Itoa(raw.Alg) + " are mismatched"}
	}
	if raw.CrvOrN == nil {
		return nil, &UnmarshalMissingFieldError{Type: "credential", Field: "RSA n"}
	}
	if raw.XOrE == nil {
		return nil, &UnmarshalMissingFieldError{Type: "credential", Field: "RSA e"}
	}
	var nb []byte
	if err := cbor.Unmarshal(raw.CrvOrN, &nb); err != nil {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "invalid RSA n"}
	}
	var eb []byte
	if err := cbor.Unmarshal(raw.XOrE, &eb); err != nil {
		return nil, &UnmarshalBadDataError{Type: "credential", Msg: "invalid RSA e"}
	}
	pk := &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}
	return &Credential{coseKeyData, alg, pk}, nil
}
