package util

import (
	"encoding/hex"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"vlower/internal/vir"
)

// Fingerprint hashes the YAML rendering of f. Two records with the same
// fingerprint are interchangeable for later passes.
func Fingerprint(f *vir.Function) (string, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", err
	}
	return Sha3(data), nil
}

// Sha3 returns the hex keccak256 digest of data.
func Sha3(data []byte) string {
	return hex.EncodeToString(crypto.Keccak256(data))
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
