package survey

import "strings"

var signatureReplacer = strings.NewReplacer(
	"> <", "><",
	" />", "/>",
)

// CompressSignature collapses redundant whitespace in vector signature
// markup before transmission. The transform is lossless for rendering: runs
// of whitespace become a single space and inter-tag gaps are removed.
func CompressSignature(markup string) string {
	if markup == "" {
		return ""
	}

	compact := strings.Join(strings.Fields(markup), " ")
	// Repeat until stable so "  >   <  " style gaps collapse fully.
	for {
		next := signatureReplacer.Replace(compact)
		if next == compact {
			return next
		}
		compact = next
	}
}
