// Package hostpm implements contract.HostPackageManager against the local
// pacman installation, matching the reference module's convention of
// shelling out to the system tool it wraps (contract.LocalGitClient does
// the same for git) rather than linking a package-manager library.
package hostpm

import (
	"bufio"
	"context"
	"os/exec"
	"strings"

	"github.com/pkgguard/pkgguard/internal/contract"
)

// Pacman queries the official sync package listing via the local
// pacman binary.
type Pacman struct{}

var _ contract.HostPackageManager = Pacman{}

// OfficialPackages returns every package name pacman reports as available
// in a sync (official) repository. Per the hook's filtering contract, a
// failure here is not returned as fatal by callers — they treat it as
// "nothing filtered" — but OfficialPackages itself reports the error so
// callers can log it.
func (Pacman) OfficialPackages(ctx context.Context) (map[string]struct{}, error) {
	cmd := exec.CommandContext(ctx, "pacman", "-Slq")
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		names[fields[0]] = struct{}{}
	}
	return names, scanner.Err()
}
