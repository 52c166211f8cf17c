package filex

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeIsResolvedAgainstCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("uploads")
	require.NoError(t, err)

	want := filepath.Join(tmp, "uploads")
	gotEval, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	wantEval, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	require.Equal(t, wantEval, gotEval)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_Absolute(t *testing.T) {
	want := filepath.Join(t.TempDir(), "a", "b")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("uploads", []byte("x"), 0o660))

	_, err := EnsureDir("uploads")
	require.Error(t, err)
}

func TestCreateExclusive(t *testing.T) {
	dir := t.TempDir()

	f, err := CreateExclusive(dir, "1700000000000.png")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = CreateExclusive(dir, "1700000000000.png")
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrExist))
}
