package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"sifs_backend/internals/features/certificates/verification/model"
)

// CertificateFileName builds "SIFS_Certificate_<number>.png" with a number that
// is safe on any filesystem. Path separators become dashes, so "SIFS/2025/001"
// yields "SIFS_Certificate_SIFS-2025-001.png".
func CertificateFileName(certificateNumber string) string {
	return model.DownloadFilenamePrefix + "_Certificate_" + sanitizeFilePart(certificateNumber) + ".png"
}

func sanitizeFilePart(s string) string {
	s = norm.NFKD.String(strings.TrimSpace(s))

	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-'
		if !ok {
			r = '-'
		}
		if r == '-' {
			if lastDash {
				continue
			}
			lastDash = true
		} else {
			lastDash = false
		}
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "unknown"
	}
	return out
}
