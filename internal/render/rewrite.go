package render

import (
	"net/url"
	"regexp"
	"strings"
)

var srcAttrRe = regexp.MustCompile(`(?i)\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// RewriteSrc rewrites every relative src attribute in html so it points at
// base. Absolute, protocol-relative and data: references are left alone.
func RewriteSrc(html []byte, base *url.URL) []byte {
	return srcAttrRe.ReplaceAllFunc(html, func(m []byte) []byte {
		sub := srcAttrRe.FindSubmatchIndex(m)
		quote := byte('"')
		ref := ""
		switch {
		case sub[2] >= 0:
			ref = string(m[sub[2]:sub[3]])
		case sub[4] >= 0:
			quote = '\''
			ref = string(m[sub[4]:sub[5]])
		}
		resolved := ResolveURL(base, ref)
		if resolved == ref {
			return m
		}
		out := make([]byte, 0, len(resolved)+6)
		out = append(out, "src="...)
		out = append(out, quote)
		out = append(out, resolved...)
		out = append(out, quote)
		return out
	})
}

// ResolveURL resolves ref against base unless ref is empty, a fragment or
// already absolute.
func ResolveURL(base *url.URL, ref string) string {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || IsAbsolute(trimmed) {
		return ref
	}
	// Root-relative references point at the media root, not the host root.
	trimmed = strings.TrimLeft(trimmed, "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return base.String() + trimmed
	}
	return base.ResolveReference(u).String()
}

// IsAbsolute reports whether ref carries a scheme or is protocol-relative.
func IsAbsolute(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

// HasRelativeSrc reports whether html still contains a relative src attribute.
func HasRelativeSrc(html []byte) bool {
	for _, m := range srcAttrRe.FindAllSubmatch(html, -1) {
		ref := string(m[1])
		if m[2] != nil {
			ref = string(m[2])
		}
		ref = strings.TrimSpace(ref)
		if ref != "" && !strings.HasPrefix(ref, "#") && !IsAbsolute(ref) {
			return true
		}
	}
	return false
}
