package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// replacement maps a literal mis-decoded sequence to the text it was meant to be.
type replacement struct {
	broken string
	fixed  string
}

// knownMojibake lists Arabic names whose UTF-8 bytes were decoded as
// Windows-1252 upstream. Matching is literal; no general transcoding is attempted.
var knownMojibake = []replacement{
	{"Ø³Ø§ÙƒÙˆ", "ساكو"},
	{"Ø¹Ø¨Ø¯Ø§Ù„Ù„Ù‡", "عبدالله"},
	{"Ø£Ø\u00adÙ…Ø¯", "أحمد"},
	{"Ø¥Ø¨Ø±Ø§Ù‡ÙŠÙ…", "إبراهيم"},
	{"Ø§Ù„Ø¯Ø®ÙŠÙ„", "الدخيل"},
	{"Ø´Ø§ÙƒØ±Ø§", "شاكرا"},
	{"Ø§Ù„Ø¹Ø«ÙŠÙ…", "العثيم"},
	{"Ø³Ù„ÙŠÙ…", "سليم"},
	{"ÙØ¶Ø§Ù„ÙŠ", "فضالي"},
}

// Normalize repairs the known mis-encoded sequences in s, trims surrounding
// whitespace and returns the NFC form of the result. Empty input yields "".
// Matching runs on composed text so decomposed input repairs the same way.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	cleaned := norm.NFC.String(strings.TrimSpace(s))
	for _, r := range knownMojibake {
		if strings.Contains(cleaned, r.broken) {
			cleaned = strings.ReplaceAll(cleaned, r.broken, r.fixed)
		}
	}

	return norm.NFC.String(cleaned)
}

// LooksMisencoded reports whether s still carries lead bytes typical of
// Arabic UTF-8 decoded as Windows-1252 once the known repairs are applied.
func LooksMisencoded(s string) bool {
	return strings.ContainsAny(Normalize(s), "\u00c3\u00d8\u00d9")
}
