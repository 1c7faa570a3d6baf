package core

import (
	"testing"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
)

func TestBinSourceVerificationSkipsNonBinPackages(t *testing.T) {
	ctx := &schema.PackageContext{
		Name:            "foo",
		Metadata:        &schema.CommunityMetadata{UpstreamURL: "https://github.com/foo/foo"},
		PkgbuildContent: "source=('https://github.com/evil/foo/releases/download/v1/foo.tar.gz')\n",
	}
	assert.Nil(t, (&binSourceVerificationFeature{}).Analyze(ctx))
}

func TestBinSourceVerificationMissingUpstreamOrContentIsNoop(t *testing.T) {
	ctx := &schema.PackageContext{Name: "foo-bin"}
	assert.Nil(t, (&binSourceVerificationFeature{}).Analyze(ctx))
}

func TestBinSourceVerificationFlagsGithubOrgMismatch(t *testing.T) {
	ctx := &schema.PackageContext{
		Name:            "foo-bin",
		Metadata:        &schema.CommunityMetadata{UpstreamURL: "https://github.com/realorg/foo"},
		PkgbuildContent: "source=('https://github.com/totallydifferentorg/foo/releases/download/v1/foo.tar.gz')\n",
	}
	signals := (&binSourceVerificationFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "B-BIN-GITHUB-ORG-MISMATCH"))
}

func TestBinSourceVerificationSameGithubOrgIsClean(t *testing.T) {
	ctx := &schema.PackageContext{
		Name:            "foo-bin",
		Metadata:        &schema.CommunityMetadata{UpstreamURL: "https://github.com/realorg/foo"},
		PkgbuildContent: "source=('https://github.com/realorg/foo/releases/download/v1/foo.tar.gz')\n",
	}
	signals := (&binSourceVerificationFeature{}).Analyze(ctx)
	assert.Empty(t, signals)
}

func TestBinSourceVerificationFlagsDomainMismatch(t *testing.T) {
	ctx := &schema.PackageContext{
		Name:            "foo-bin",
		Metadata:        &schema.CommunityMetadata{UpstreamURL: "https://foo-project.example.com"},
		PkgbuildContent: "source=('https://totally-unrelated-host.net/foo.tar.gz')\n",
	}
	signals := (&binSourceVerificationFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "B-BIN-DOMAIN-MISMATCH"))
}

func TestBinSourceVerificationUnresolvedVariableSkipped(t *testing.T) {
	ctx := &schema.PackageContext{
		Name:            "foo-bin",
		Metadata:        &schema.CommunityMetadata{UpstreamURL: "https://foo-project.example.com"},
		PkgbuildContent: "source=(\"${pkgname}-${pkgver}.tar.gz\")\n",
	}
	signals := (&binSourceVerificationFeature{}).Analyze(ctx)
	assert.Empty(t, signals)
}
