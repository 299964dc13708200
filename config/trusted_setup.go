// Package config provides the trusted setup used by the data availability
// engine: parsing of the Ethereum ceremony output and generation of insecure
// setups for development.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/domain"
	"github.com/vocdoni/davinci-das/crypto/kzg"
	"github.com/vocdoni/davinci-das/log"
	"golang.org/x/sync/errgroup"
)

const (
	// SetupG1Points is the number of G1 powers of the Ethereum setup, one per
	// blob field element.
	SetupG1Points = 4096
	// SetupG2Points is the number of G2 powers of the Ethereum setup.
	SetupG2Points = 65
)

// DefaultInsecureSecret is the secret used by development setups when none
// is given. Proofs against a setup with a known secret can be forged.
var DefaultInsecureSecret = uint256.NewInt(1337)

// ErrInvalidTrustedSetup is returned when a setup file is malformed.
var ErrInvalidTrustedSetup = errors.New("invalid trusted setup")

// TrustedSetupJSON is the JSON layout of the Ethereum KZG ceremony output.
// Points are 0x-prefixed compressed encodings, and the Lagrange points are in
// bit-reversed order.
type TrustedSetupJSON struct {
	G1Monomial []string `json:"g1_monomial"`
	G1Lagrange []string `json:"g1_lagrange"`
	G2Monomial []string `json:"g2_monomial"`
}

// LoadTrustedSetup reads and parses a trusted setup JSON file.
func LoadTrustedSetup(path string) (*kzg.SRS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trusted setup: %w", err)
	}
	srs, err := ParseTrustedSetup(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return srs, nil
}

// ParseTrustedSetup decodes the monomial points of a trusted setup JSON
// document. Every point is checked to be in the prime order subgroup.
func ParseTrustedSetup(data []byte) (*kzg.SRS, error) {
	var setup TrustedSetupJSON
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrustedSetup, err)
	}
	switch {
	case len(setup.G1Monomial) != SetupG1Points:
		return nil, fmt.Errorf("%w: %d G1 monomial points, expected %d", ErrInvalidTrustedSetup, len(setup.G1Monomial), SetupG1Points)
	case len(setup.G1Lagrange) != SetupG1Points:
		return nil, fmt.Errorf("%w: %d G1 Lagrange points, expected %d", ErrInvalidTrustedSetup, len(setup.G1Lagrange), SetupG1Points)
	case len(setup.G2Monomial) != SetupG2Points:
		return nil, fmt.Errorf("%w: %d G2 points, expected %d", ErrInvalidTrustedSetup, len(setup.G2Monomial), SetupG2Points)
	}

	g1 := make([]bls12381.G1Affine, len(setup.G1Monomial))
	g2 := make([]bls12381.G2Affine, len(setup.G2Monomial))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, s := range setup.G1Monomial {
		g.Go(func() error {
			b, err := hexutil.Decode(s)
			if err != nil {
				return fmt.Errorf("g1_monomial[%d]: %w", i, err)
			}
			if g1[i], err = bls.DecodeG1(b); err != nil {
				return fmt.Errorf("g1_monomial[%d]: %w", i, err)
			}
			return nil
		})
	}
	for i, s := range setup.G2Monomial {
		g.Go(func() error {
			b, err := hexutil.Decode(s)
			if err != nil {
				return fmt.Errorf("g2_monomial[%d]: %w", i, err)
			}
			if g2[i], err = bls.DecodeG2(b); err != nil {
				return fmt.Errorf("g2_monomial[%d]: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrustedSetup, err)
	}
	srs, err := kzg.NewSRS(g1, g2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrustedSetup, err)
	}
	// both groups must hold powers of the same τ: e([τ]₁, [1]₂) == e([1]₁, [τ]₂)
	consistent, err := bls.PairingsEqual(&g1[1], &g2[0], &g1[0], &g2[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrustedSetup, err)
	}
	if !consistent {
		return nil, fmt.Errorf("%w: G1 and G2 points use different secrets", ErrInvalidTrustedSetup)
	}
	log.Debugw("trusted setup parsed", "g1", len(g1), "g2", len(g2))
	return srs, nil
}

// InsecureTrustedSetup builds a well-formed setup document from a known
// secret. It must never be used outside tests and development.
func InsecureTrustedSetup(secret *uint256.Int) (*TrustedSetupJSON, error) {
	if secret == nil {
		secret = DefaultInsecureSecret
	}
	srs, err := kzg.InsecureSRS(secret.ToBig(), SetupG1Points, SetupG2Points)
	if err != nil {
		return nil, err
	}

	// [L_i(τ)]₁ = IFFT of the powers of τ, stored bit-reversed
	var tau fr.Element
	tau.SetBigInt(secret.ToBig())
	lagrange := kzg.Powers(tau, SetupG1Points)
	domain.New(SetupG1Points).IFFT(lagrange)
	domain.BitReverse(lagrange)
	g1Gen := bls.G1Generator()
	g1Lagrange := bls12381.BatchScalarMultiplicationG1(&g1Gen, lagrange)

	setup := &TrustedSetupJSON{
		G1Monomial: make([]string, SetupG1Points),
		G1Lagrange: make([]string, SetupG1Points),
		G2Monomial: make([]string, SetupG2Points),
	}
	for i := range SetupG1Points {
		mono, lag := bls.EncodeG1(&srs.G1[i]), bls.EncodeG1(&g1Lagrange[i])
		setup.G1Monomial[i] = hexutil.Encode(mono[:])
		setup.G1Lagrange[i] = hexutil.Encode(lag[:])
	}
	for i := range SetupG2Points {
		p := bls.EncodeG2(&srs.G2[i])
		setup.G2Monomial[i] = hexutil.Encode(p[:])
	}
	log.Warnw("generated insecure trusted setup", "secret", secret.Dec())
	return setup, nil
}

// InsecureSRS returns the SRS of InsecureTrustedSetup without going through
// the JSON encoding.
func InsecureSRS(secret *uint256.Int) (*kzg.SRS, error) {
	if secret == nil {
		secret = DefaultInsecureSecret
	}
	return kzg.InsecureSRS(secret.ToBig(), SetupG1Points, SetupG2Points)
}
