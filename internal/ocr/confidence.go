package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	reCurr   = regexp.MustCompile(`\$\s?\d`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{3})+(\.\d{2})?\b`)
	reCOI    = regexp.MustCompile(`(?i)\b(certificate of (liability )?insurance|general aggregate|each occurrence|insured|insurer)\b`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }
func hasCOIVocabulary(s string) bool   { return reCOI.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// boost for typical certificate artifacts: dates, dollar limits, ACORD wording
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if hasCOIVocabulary(txtL) {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
