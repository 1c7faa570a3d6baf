package core

import "regexp"

// arrayGroup is one parsed `name[_suffix]=(...)` array from recipe text,
// e.g. `source=(...)` or `sha256sums_x86_64=(...)`.
type arrayGroup struct {
	prefix  string // e.g. "source", "sha256sums"
	suffix  string // e.g. "x86_64", empty for the base (non-arch) group
	raw     string // the full "name=(...)" text as it appeared
	entries []string
}

var arrayAssignmentRe = regexp.MustCompile(`(?ms)^([A-Za-z_][A-Za-z0-9_]*?)(_[A-Za-z0-9_]+)?=\(([^)]*)\)`)

var arrayTokenRe = regexp.MustCompile(`'[^']*'|"[^"]*"|[^\s'")(]+`)

// extractArrayGroups finds every array assignment whose base name equals
// prefix (e.g. "source", "sha256sums"), including arch-suffixed variants.
func extractArrayGroups(content, prefix string) []arrayGroup {
	matches := arrayAssignmentRe.FindAllStringSubmatchIndex(content, -1)
	var groups []arrayGroup
	for _, m := range matches {
		name := content[m[2]:m[3]]
		if name != prefix {
			continue
		}
		suffix := ""
		if m[4] != -1 {
			suffix = content[m[4]+1 : m[5]] // drop leading underscore
		}
		body := content[m[6]:m[7]]
		groups = append(groups, arrayGroup{
			prefix:  name,
			suffix:  suffix,
			raw:     content[m[0]:m[1]],
			entries: tokenizeArray(body),
		})
	}
	return groups
}

func tokenizeArray(body string) []string {
	raw := arrayTokenRe.FindAllString(body, -1)
	entries := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) >= 2 && (tok[0] == '\'' || tok[0] == '"') && tok[len(tok)-1] == tok[0] {
			tok = tok[1 : len(tok)-1]
		}
		entries = append(entries, tok)
	}
	return entries
}

// checksumPrefixes lists every checksum array name recognized by both the
// checksum and shell analyses.
var checksumPrefixes = []string{"md5sums", "sha1sums", "sha224sums", "sha256sums", "sha384sums", "sha512sums", "b2sums"}

// extractSourceArrayGroups is a convenience wrapper used by source_url_analysis.
func extractSourceArrayGroups(content string) []arrayGroup {
	return extractArrayGroups(content, "source")
}
