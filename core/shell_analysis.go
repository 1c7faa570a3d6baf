package core

import (
	"math"
	"regexp"
	"strings"

	"github.com/pkgguard/pkgguard/schema"
)

// pkgbuildReservedVars are recipe-metadata assignments that variable
// resolution must not treat as attacker-controlled data.
var pkgbuildReservedVars = map[string]bool{
	"pkgname": true, "pkgver": true, "pkgrel": true, "epoch": true, "pkgdesc": true,
	"arch": true, "url": true, "license": true, "groups": true, "depends": true,
	"makedepends": true, "checkdepends": true, "optdepends": true, "provides": true,
	"conflicts": true, "replaces": true, "backup": true, "options": true, "install": true,
	"changelog": true, "source": true, "noextract": true, "md5sums": true, "sha1sums": true,
	"sha224sums": true, "sha256sums": true, "sha384sums": true, "sha512sums": true,
	"b2sums": true, "validpgpkeys": true, "srcdir": true, "pkgdir": true, "startdir": true,
}

var dangerousCommands = []string{"curl", "wget", "nc", "ncat", "bash", "sh", "python", "python3", "python2", "perl", "ruby", "php", "lua", "socat", "telnet"}

var assignRe = regexp.MustCompile(`(?m)(?:^|;)\s*([A-Za-z_][A-Za-z0-9_]*)=(?:"([^"]*)"|'([^']*)'|([^;"'\s]*))`)
var varRefRe = regexp.MustCompile(`\$\{?([A-Za-z_][A-Za-z0-9_]*)\}?`)
var downloadExecRe = regexp.MustCompile(`(curl|wget)\b[^\n]*\|\s*(sudo\s+)?(bash|sh|zsh|python[23]?|perl)\b`)
var execPositionRe = regexp.MustCompile(`(^|[|;]|&&|\|\||\$\(|` + "`" + `)\s*\$?\{?([A-Za-z_][A-Za-z0-9_]*)\b`)
var charByCharRe = regexp.MustCompile(`\$\((?:printf\s+'\\x[0-9A-Fa-f]{2}'|echo\s+-e\s+'\\x[0-9A-Fa-f]{2}')\)`)
var hexRunRe = regexp.MustCompile(`[0-9A-Fa-f]{128,}`)
var base64RunRe = regexp.MustCompile(`[A-Za-z0-9+/]{100,}={0,2}`)
// heredocOpenRe matches a heredoc opener. Go's regexp has no backreferences,
// so the closing delimiter line is found with a pattern built from the
// captured name.
var heredocOpenRe = regexp.MustCompile(`<<-?\s*['"]?(\w+)['"]?\n`)

// shellAnalysisFeature performs static analysis over recipe and install-hook
// shell text that goes beyond straight regex matching: variable resolution,
// indirect execution, char-by-char construction, and entropy-based data
// blob detection.
type shellAnalysisFeature struct{}

func (f *shellAnalysisFeature) Name() string { return "shell_analysis" }

func (f *shellAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	var signals []schema.Signal
	if ctx.PkgbuildContent != "" {
		signals = append(signals, analyzeShellText(ctx.PkgbuildContent, "", stripChecksumArrays(ctx.PkgbuildContent))...)
	}
	if ctx.InstallScriptContent != "" {
		signals = append(signals, analyzeShellText(ctx.InstallScriptContent, "IS-", ctx.InstallScriptContent)...)
	}
	return signals
}

// stripChecksumArrays removes checksum array bodies so hex-blob detection
// does not flag legitimate checksum values.
func stripChecksumArrays(content string) string {
	scrubbed := content
	for _, prefix := range checksumPrefixes {
		for _, g := range extractArrayGroups(content, prefix) {
			scrubbed = strings.Replace(scrubbed, g.raw, "", 1)
		}
	}
	return scrubbed
}

func analyzeShellText(text, idPrefix, blobScanText string) []schema.Signal {
	var signals []schema.Signal
	lines := strings.Split(text, "\n")

	assignments := collectAssignments(text)

	for _, line := range lines {
		expanded := expandOnce(line, assignments)

		if downloadExecRe.MatchString(expanded) {
			signals = append(signals, sig(idPrefix+"SA-VAR-CONCAT-EXEC", "variable expansion reconstructs a download-and-execute pipeline", 85, true, strings.TrimSpace(line)))
		} else if containsAny(expanded, dangerousCommands) && expanded != line {
			signals = append(signals, sig(idPrefix+"SA-VAR-CONCAT-CMD", "variable expansion reconstructs a dangerous command", 55, false, strings.TrimSpace(line)))
		}

		if indirectExecutionLine(line, assignments) {
			signals = append(signals, sig(idPrefix+"SA-INDIRECT-EXEC", "a variable bound to a dangerous command appears in execution position", 70, false, strings.TrimSpace(line)))
		}

		if len(charByCharRe.FindAllString(line, -1)) >= 3 {
			signals = append(signals, sig(idPrefix+"SA-CHARBYCHAR-CONSTRUCT", "line reconstructs data via three or more char-by-char subshell expressions", 75, false, strings.TrimSpace(line)))
		}
	}

	if m := hexRunRe.FindString(blobScanText); m != "" {
		signals = append(signals, sig(idPrefix+"SA-DATA-BLOB-HEX", "contiguous hexadecimal run of 128+ characters outside a checksum array", 50, false, ""))
	}
	if m := base64RunRe.FindString(blobScanText); m != "" {
		signals = append(signals, sig(idPrefix+"SA-DATA-BLOB-BASE64", "contiguous base64-alphabet run of 100+ characters", 50, false, ""))
	}
	for _, m := range heredocOpenRe.FindAllStringSubmatchIndex(text, -1) {
		body := text[m[1]:]
		closeRe := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(text[m[2]:m[3]]) + `\b`)
		end := closeRe.FindStringIndex(body)
		if end != nil && shannonEntropy(strings.TrimSuffix(body[:end[0]], "\n")) > 5.0 {
			signals = append(signals, sig(idPrefix+"SA-HIGH-ENTROPY-HEREDOC", "heredoc body has Shannon entropy above 5.0 bits/byte", 55, false, ""))
			break
		}
	}

	if binaryDownloadWithoutBuild(text) {
		signals = append(signals, sig(idPrefix+"SA-BINARY-DOWNLOAD-NOCOMPILE", "binary downloaded and made executable with no build step present", 60, false, ""))
	}

	return signals
}

func sig(id, desc string, points int, override bool, matched string) schema.Signal {
	return schema.Signal{ID: id, Description: desc, Points: points, Category: schema.CategoryPkgbuild, OverrideGate: override, MatchedLine: matched}
}

func collectAssignments(text string) map[string]string {
	assignments := make(map[string]string)
	for _, m := range assignRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if pkgbuildReservedVars[name] {
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if value == "" {
			value = m[4]
		}
		assignments[name] = value
	}
	return assignments
}

// expandOnce substitutes $NAME/${NAME} references using assignments,
// single pass, no recursion.
func expandOnce(line string, assignments map[string]string) string {
	return varRefRe.ReplaceAllStringFunc(line, func(ref string) string {
		name := strings.Trim(ref, "${}")
		if v, ok := assignments[name]; ok {
			return v
		}
		return ref
	})
}

func containsAny(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// indirectExecutionLine reports whether a variable bound to a dangerous
// command name appears in execution position: line start, or after |, ;,
// &&, ||, $(, or a backtick.
func indirectExecutionLine(line string, assignments map[string]string) bool {
	for _, m := range execPositionRe.FindAllStringSubmatch(line, -1) {
		name := m[2]
		value, ok := assignments[name]
		if !ok {
			continue
		}
		for _, cmd := range dangerousCommands {
			if strings.EqualFold(strings.TrimSpace(value), cmd) {
				return true
			}
		}
	}
	return false
}

func shannonEntropy(data string) float64 {
	if data == "" {
		return 0
	}
	counts := make(map[rune]int)
	for _, r := range data {
		counts[r]++
	}
	total := float64(len(data))
	var entropy float64
	for _, c := range counts {
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

var buildVerbs = []string{"make", "cmake", "cargo", "go build", "meson", "ninja", "gcc", "g++", "clang", "rustc", "python setup.py"}

func binaryDownloadWithoutBuild(text string) bool {
	hasDownload := strings.Contains(text, "curl -o") || strings.Contains(text, "curl -O") ||
		strings.Contains(text, "wget -O") || strings.Contains(text, "wget -o")
	hasChmodExec := strings.Contains(text, "chmod +x")
	if !hasDownload || !hasChmodExec {
		return false
	}
	for _, verb := range buildVerbs {
		if strings.Contains(text, verb) {
			return false
		}
	}
	return true
}
