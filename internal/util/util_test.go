package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlower/internal/vir"
)

func function(fuel uint32) *vir.Function {
	return &vir.Function{
		Name:       &vir.Fun{Path: vir.NewPath("app", "f")},
		Kind:       vir.StaticKind(),
		Visibility: vir.Public(),
		Mode:       vir.ModeSpec,
		Fuel:       fuel,
		Ret:        &vir.Param{Name: vir.ReturnValue, Typ: vir.Unit(), Mode: vir.ModeSpec},
	}
}

func Test_FingerprintStable(t *testing.T) {
	a, err := Fingerprint(function(1))
	require.NoError(t, err)
	b, err := Fingerprint(function(1))
	require.NoError(t, err)
	c, err := Fingerprint(function(2))
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func Test_Sha3(t *testing.T) {
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Sha3(nil))
}

func Test_FileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("items: []\n"), 0o644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir))
}
