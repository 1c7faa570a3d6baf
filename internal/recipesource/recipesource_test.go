package recipesource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkgguard/pkgguard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceDefaults(t *testing.T) {
	s := NewSource("/tmp/pkgguard-cache")
	assert.Equal(t, "/tmp/pkgguard-cache", s.CacheRoot)
	assert.Equal(t, "https://aur.archlinux.org/rpc/v5/info", s.MetadataURL)
	assert.Equal(t, "https://aur.archlinux.org/packages/yay", s.CommentsURL("yay"))
	assert.Equal(t, 20*time.Second, s.HTTPClient.Timeout)
}

func TestInstallHookFilesDefaultsToDotInstall(t *testing.T) {
	s := &Source{}
	assert.Equal(t, []string{".install"}, s.installHookFiles())
}

func TestInstallHookFilesUsesConfiguredList(t *testing.T) {
	s := &Source{InstallHookFiles: []string{"*.install", "hooks/*.sh"}}
	assert.Equal(t, []string{"*.install", "hooks/*.sh"}, s.installHookFiles())
}

func TestReadFirstExistingReturnsFirstMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname=foo\n"), 0o644))

	content, err := readFirstExisting(dir, "MISSING", "PKGBUILD")

	require.NoError(t, err)
	assert.Equal(t, "pkgname=foo\n", content)
}

func TestReadFirstExistingErrorsWhenNoneExist(t *testing.T) {
	dir := t.TempDir()
	_, err := readFirstExisting(dir, "PKGBUILD")
	assert.Error(t, err)
}

func TestReadInstallHookFindsSuffixMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.install"), []byte("post_install() { :; }\n"), 0o644))

	content, err := readInstallHook(dir, []string{".install"})

	require.NoError(t, err)
	assert.Contains(t, content, "post_install")
}

func TestReadInstallHookNoMatchReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname=foo\n"), 0o644))

	_, err := readInstallHook(dir, []string{".install"})

	assert.Error(t, err)
}

func TestIsNetworkGitError(t *testing.T) {
	assert.True(t, isNetworkGitError("fatal: unable to access 'https://...': Could not resolve host"))
	assert.True(t, isNetworkGitError("ssl error: TLS handshake failed"))
	assert.False(t, isNetworkGitError("fatal: repository not found"))
}

func TestWrapGitErrorClassifiesNetworkFailure(t *testing.T) {
	err := wrapGitError(errors.New("exit status 128"), []byte("fatal: Could not resolve host: aur.archlinux.org"))
	assert.ErrorIs(t, err, core.ErrNetworkFailure)
}

func TestWrapGitErrorClassifiesNotFound(t *testing.T) {
	err := wrapGitError(errors.New("exit status 128"), []byte("fatal: repository 'https://aur.archlinux.org/nope.git/' not found"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestWrapGitErrorFallsBackToLocalIO(t *testing.T) {
	err := wrapGitError(errors.New("exit status 1"), []byte("fatal: unable to write new index file"))
	assert.ErrorIs(t, err, core.ErrLocalIO)
}

func TestWrapGitErrorUsesErrMessageWhenOutputEmpty(t *testing.T) {
	err := wrapGitError(errors.New("exec: \"git\": executable file not found in $PATH"), nil)
	assert.ErrorIs(t, err, core.ErrLocalIO)
	assert.Contains(t, err.Error(), "executable file not found")
}

