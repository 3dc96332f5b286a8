package classify

import (
	"regexp"
	"sort"
	"strings"
)

// Document types recognized by the classifier.
const (
	TypeAccessReview = "access_review"
	TypeFinancialRec = "financial_reconciliation"
	TypeRiskAssess   = "risk_assessment"
	TypeUnknown      = "unknown"

	QualityPass      = "pass"
	QualityFail      = "fail"
	QualityException = "exception"
)

// Result is the classification of an uploaded document.
type Result struct {
	DocumentType string
	Frameworks   []string
	QualityLevel string
	ControlIDs   []string
	Confidence   float64
}

// typeKeywords score a document toward one type per occurrence.
var typeKeywords = map[string][]string{
	TypeAccessReview: {
		"access review", "user access", "entitlement", "permission",
		"privileged access", "provisioning", "deprovisioning", "active directory",
	},
	TypeFinancialRec: {
		"reconciliation", "general ledger", "journal entry", "balance",
		"month-end close", "variance", "accrual", "trial balance",
	},
	TypeRiskAssess: {
		"risk assessment", "risk register", "likelihood", "impact",
		"inherent risk", "residual risk", "mitigation", "risk rating",
	},
}

var frameworkKeywords = map[string][]string{
	"SOX":      {"sox", "sarbanes-oxley", "section 404", "sox 404", "icfr"},
	"SOC2":     {"soc 2", "soc2", "trust services", "type ii report"},
	"ISO27001": {"iso 27001", "iso27001", "isms"},
	"COSO":     {"coso", "internal control framework"},
}

var controlIDPattern = regexp.MustCompile(`\b([A-Z]{2,5}-\d+|[A-Z]{2}\d\.\d)\b`)

// Classify inspects document text and infers its type, the compliance
// frameworks it relates to, a quality level, and any control identifiers.
func Classify(content string) Result {
	lower := strings.ToLower(content)

	// Document type by keyword occurrence count
	bestType, bestScore, totalScore := TypeUnknown, 0, 0
	types := make([]string, 0, len(typeKeywords))
	for docType := range typeKeywords {
		types = append(types, docType)
	}
	sort.Strings(types)
	for _, docType := range types {
		score := 0
		for _, keyword := range typeKeywords[docType] {
			score += strings.Count(lower, keyword)
		}
		totalScore += score
		if score > bestScore {
			bestScore = score
			bestType = docType
		}
	}

	var frameworks []string
	names := make([]string, 0, len(frameworkKeywords))
	for name := range frameworkKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, keyword := range frameworkKeywords[name] {
			if strings.Contains(lower, keyword) {
				frameworks = append(frameworks, name)
				break
			}
		}
	}

	quality := QualityPass
	switch {
	case strings.Contains(lower, "material weakness"):
		quality = QualityFail
	case strings.Contains(lower, "significant deficiency") || strings.Contains(lower, "exception"):
		quality = QualityException
	}

	var controlIDs []string
	seen := map[string]bool{}
	for _, id := range controlIDPattern.FindAllString(content, -1) {
		if !seen[id] {
			seen[id] = true
			controlIDs = append(controlIDs, id)
		}
	}
	sort.Strings(controlIDs)

	confidence := 0.0
	if totalScore > 0 {
		confidence = float64(bestScore) / float64(totalScore)
	}

	return Result{
		DocumentType: bestType,
		Frameworks:   frameworks,
		QualityLevel: quality,
		ControlIDs:   controlIDs,
		Confidence:   confidence,
	}
}
