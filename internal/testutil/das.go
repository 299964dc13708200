// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"math/big"
	"os"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/config"
	"github.com/vocdoni/davinci-das/crypto/kzg"
	"github.com/vocdoni/davinci-das/types"
)

// TrustedSetupEnv names the environment variable holding the path of the
// mainnet trusted setup JSON. Tests comparing against other implementations
// are skipped when it is unset.
const TrustedSetupEnv = "DAS_TRUSTED_SETUP"

var (
	srsOnce sync.Once
	srs     *kzg.SRS
)

// InsecureSRS returns a process wide SRS built from the default insecure
// secret, so that every test reuses the same points.
func InsecureSRS() *kzg.SRS {
	srsOnce.Do(func() {
		var err error
		if srs, err = config.InsecureSRS(config.DefaultInsecureSecret); err != nil {
			panic(err)
		}
	})
	return srs
}

// TrustedSetupPath returns the path set in TrustedSetupEnv, if any.
func TrustedSetupPath() (string, bool) {
	path := os.Getenv(TrustedSetupEnv)
	return path, path != ""
}

// BlobFromScalars encodes the given field elements, padding with zeros.
func BlobFromScalars(scalars ...fr.Element) *types.Blob {
	blob := &types.Blob{}
	for i := range scalars {
		b := scalars[i].Bytes()
		copy(blob[i*fr.Bytes:], b[:])
	}
	return blob
}

// RandomBlob returns a blob of uniformly random canonical field elements.
func RandomBlob() *types.Blob {
	scalars := make([]fr.Element, types.BlobLength/fr.Bytes)
	for i := range scalars {
		scalars[i].MustSetRandom()
	}
	return BlobFromScalars(scalars...)
}

// NonCanonicalBlob returns a random blob whose element at index holds the
// field modulus.
func NonCanonicalBlob(index int) *types.Blob {
	blob := RandomBlob()
	fr.Modulus().FillBytes(blob[index*fr.Bytes : (index+1)*fr.Bytes])
	return blob
}

// InsecureSecret returns the secret behind InsecureSRS.
func InsecureSecret() *big.Int {
	return config.DefaultInsecureSecret.ToBig()
}
