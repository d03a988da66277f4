// Copyright (c) 2026 Keycove Authors. All rights reserved.
// Use of this source code is governed by Apache License 2.0 found in the LICENSE file.

package webauthn

import (
	"crypto"
	"crypto/x509"
	"strconv"
	"sync"
	"sync/atomic"
)

// COSE algorithm identifiers registered in the IANA COSE Algorithms registry
// and supported by default.
const (
	COSEAlgES256 = -7     // ECDSA with SHA-256
	COSEAlgES384 = -35    // ECDSA with SHA-384
	COSEAlgES512 = -36    // ECDSA with SHA-512
	COSEAlgPS256 = -37    // RSASSA-PSS with SHA-256
	COSEAlgPS384 = -38    // RSASSA-PSS with SHA-384
	COSEAlgPS512 = -39    // RSASSA-PSS with SHA-512
	COSEAlgRS1   = -65535 // RSASSA-PKCS1-v1_5 with SHA-1
	COSEAlgRS256 = -257   // RSASSA-PKCS1-v1_5 with SHA-256
	COSEAlgRS384 = -258   // RSASSA-PKCS1-v1_5 with SHA-384
	COSEAlgRS512 = -259   // RSASSA-PKCS1-v1_5 with SHA-512
)

// SignatureAlgorithm ties a COSE algorithm identifier to its x509 signature
// algorithm, public key algorithm, and hash function.  It is a closed set:
// only registered algorithms can be parsed from credentials or statements.
type SignatureAlgorithm struct {
	Algorithm          x509.SignatureAlgorithm
	PublicKeyAlgorithm x509.PublicKeyAlgorithm
	Hash               crypto.Hash
	COSEAlgorithm      int
}

// IsRSA reports whether the signature algorithm uses an RSA public key.
func (alg SignatureAlgorithm) IsRSA() bool {
	return alg.PublicKeyAlgorithm == x509.RSA
}

// IsRSAPSS reports whether the signature algorithm is RSASSA-PSS.
func (alg SignatureAlgorithm) IsRSAPSS() bool {
	switch alg.Algorithm {
	case x509.SHA256WithRSAPSS, x509.SHA384WithRSAPSS, x509.SHA512WithRSAPSS:
		return true
	default:
		return false
	}
}

// IsECDSA reports whether the signature algorithm uses an elliptic-curve
// public key.
func (alg SignatureAlgorithm) IsECDSA() bool {
	return alg.PublicKeyAlgorithm == x509.ECDSA
}

// CoseAlgToSignatureAlgorithm returns the signature algorithm registered for
// the given COSE algorithm identifier.
func CoseAlgToSignatureAlgorithm(coseAlg int) (SignatureAlgorithm, error) {
	algs, _ := atomicSignatureAlgorithms.Load().([]SignatureAlgorithm)
	for _, alg := range algs {
		if alg.COSEAlgorithm == coseAlg {
			return alg, nil
		}
	}
	return SignatureAlgorithm{}, &UnregisteredFeatureError{Feature: "COSE algorithm " + strconv.Itoa(coseAlg)}
}

var (
	signatureAlgorithmsMu     sync.Mutex
	atomicSignatureAlgorithms atomic.Value
)

// RegisterSignatureAlgorithm registers the given COSE algorithm identifier
// with its corresponding signature algorithm, public key algorithm, and hash
// function.  Registering an identifier again replaces the earlier entry.
func RegisterSignatureAlgorithm(coseAlg int, sigAlg x509.SignatureAlgorithm, pkAlg x509.PublicKeyAlgorithm, hash crypto.Hash) {
	signatureAlgorithmsMu.Lock()
	defer signatureAlgorithmsMu.Unlock()

	algs, _ := atomicSignatureAlgorithms.Load().([]SignatureAlgorithm)
	for i := 0; i < len(algs); i++ {
		if algs[i].COSEAlgorithm == coseAlg {
			algs[i] = SignatureAlgorithm{sigAlg, pkAlg, hash, coseAlg}
			atomicSignatureAlgorithms.Store(algs)
			return
		}
	}
	atomicSignatureAlgorithms.Store(append(algs, SignatureAlgorithm{sigAlg, pkAlg, hash, coseAlg}))
}

// UnregisterSignatureAlgorithm removes the given COSE algorithm identifier.
func UnregisterSignatureAlgorithm(coseAlg int) {
	signatureAlgorithmsMu.Lock()
	defer signatureAlgorithmsMu.Unlock()

	algs, _ := atomicSignatureAlgorithms.Load().([]SignatureAlgorithm)
	for i := 0; i < len(algs); i++ {
		if algs[i].COSEAlgorithm == coseAlg {
			atomicSignatureAlgorithms.Store(append(algs[:i], algs[i+1:]...))
			return
		}
	}
}

func signatureAlgorithmRegistered(coseAlg int) bool {
	algs, _ := atomicSignatureAlgorithms.Load().([]SignatureAlgorithm)
	for _, alg := range algs {
		if alg.COSEAlgorithm == coseAlg {
			return true
		}
	}
	return false
}

func init() {
	RegisterSignatureAlgorithm(COSEAlgES256, x509.ECDSAWithSHA256, x509.ECDSA, crypto.SHA256)
	RegisterSignatureAlgorithm(COSEAlgES384, x509.ECDSAWithSHA384, x509.ECDSA, crypto.SHA384)
	RegisterSignatureAlgorithm(COSEAlgES512, x509.ECDSAWithSHA512, x509.ECDSA, crypto.SHA512)
	RegisterSignatureAlgorithm(COSEAlgPS256, x509.SHA256WithRSAPSS, x509.RSA, crypto.SHA256)
	RegisterSignatureAlgorithm(COSEAlgPS384, x509.SHA384WithRSAPSS, x509.RSA, crypto.SHA384)
	RegisterSignatureAlgorithm(COSEAlgPS512, x509.SHA512WithRSAPSS, x509.RSA, crypto.SHA512)
	RegisterSignatureAlgorithm(COSEAlgRS1, x509.SHA1WithRSA, x509.RSA, crypto.SHA1)
	RegisterSignatureAlgorithm(COSEAlgRS256, x509.SHA256WithRSA, x509.RSA, crypto.SHA256)
	RegisterSignatureAlgorithm(COSEAlgRS384, x509.SHA384WithRSA, x509.RSA, crypto.SHA384)
	RegisterSignatureAlgorithm(COSEAlgRS512, x509.SHA512WithRSA, x509.RSA, crypto.SHA512)
}
