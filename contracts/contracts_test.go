package contracts

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/stretchr/testify/require"
)

func TestReadMissingFiles(t *testing.T) {
	_fs := fstest.MapFS{}

	// Missing NEF
	_, err := Read(_fs, CrashDir)
	require.Error(t, err)

	// Missing manifest.
	_fs[CrashDir+"/"+nefName] = &fstest.MapFile{}
	_, err = Read(_fs, CrashDir)
	require.Error(t, err)
}

func TestReadInvalidFormat(t *testing.T) {
	var (
		_fs          = fstest.MapFS{}
		nefPath      = CrashDir + "/" + nefName
		manifestPath = CrashDir + "/" + manifestName
	)

	validNEF, bNEF := anyValidNEF(t)
	validManifest, bManifest := anyValidManifest(t, "zero")

	_fs[nefPath] = &fstest.MapFile{Data: bNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: bManifest}

	c, err := Read(_fs, CrashDir)
	require.NoError(t, err)
	require.Equal(t, validNEF.Checksum, c.NEF.Checksum)
	require.Equal(t, validManifest.Name, c.Manifest.Name)

	_fs[nefPath] = &fstest.MapFile{Data: []byte("not a NEF")}
	_fs[manifestPath] = &fstest.MapFile{Data: bManifest}

	_, err = Read(_fs, CrashDir)
	require.ErrorIs(t, err, errInvalidNEF)

	_fs[nefPath] = &fstest.MapFile{Data: bNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: []byte("not a manifest")}

	_, err = Read(_fs, CrashDir)
	require.ErrorIs(t, err, errInvalidManifest)
}

func TestReadCrash(t *testing.T) {
	_, bNEF := anyValidNEF(t)

	_fs := fstest.MapFS{
		CrashDir + "/" + nefName: &fstest.MapFile{Data: bNEF},
	}

	_, bManifest := anyValidManifest(t, "WETH Token")
	_fs[CrashDir+"/"+manifestName] = &fstest.MapFile{Data: bManifest}

	_, err := ReadCrash(_fs)
	require.ErrorIs(t, err, errUnexpectedName)

	_, bManifest = anyValidManifest(t, "Crash")
	_fs[CrashDir+"/"+manifestName] = &fstest.MapFile{Data: bManifest}

	c, err := ReadCrash(_fs)
	require.NoError(t, err)
	require.Equal(t, "Crash", c.Manifest.Name)
}

func anyValidNEF(tb testing.TB) (nef.File, []byte) {
	script := make([]byte, 32)

	_nef, err := nef.NewFile(script)
	require.NoError(tb, err)

	bNEF, err := _nef.Bytes()
	require.NoError(tb, err)

	return *_nef, bNEF
}

func anyValidManifest(tb testing.TB, name string) (manifest.Manifest, []byte) {
	_manifest := manifest.NewManifest(name)

	jManifest, err := json.Marshal(_manifest)
	require.NoError(tb, err)

	return *_manifest, jManifest
}
