package classify

import (
	"reflect"
	"testing"
)

func TestClassifyDocumentType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "access_review",
			content: "Quarterly user access review covering provisioning and deprovisioning of Active Directory entitlements.",
			want:    TypeAccessReview,
		},
		{
			name:    "financial_reconciliation",
			content: "The month-end close included a reconciliation of the general ledger against the trial balance with no variance.",
			want:    TypeFinancialRec,
		},
		{
			name:    "risk_assessment",
			content: "Annual risk assessment scoring likelihood and impact; residual risk recorded in the risk register.",
			want:    TypeRiskAssess,
		},
		{
			name:    "unrelated_text",
			content: "The office picnic is scheduled for Friday afternoon.",
			want:    TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.content)
			if result.DocumentType != tt.want {
				t.Errorf("DocumentType = %q, want %q", result.DocumentType, tt.want)
			}
		})
	}
}

func TestClassifyFrameworks(t *testing.T) {
	content := "Testing performed under SOX 404 and the SOC 2 trust services criteria."
	result := Classify(content)

	want := []string{"SOC2", "SOX"}
	if !reflect.DeepEqual(result.Frameworks, want) {
		t.Errorf("Frameworks = %v, want %v", result.Frameworks, want)
	}
}

func TestClassifyQualityLevel(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"material_weakness", "A material weakness was identified in revenue recognition.", QualityFail},
		{"significant_deficiency", "One significant deficiency was noted.", QualityException},
		{"exception_noted", "An exception was noted for two sampled users.", QualityException},
		{"clean", "All controls operated effectively during the period.", QualityPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.content).QualityLevel; got != tt.want {
				t.Errorf("QualityLevel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyControlIDs(t *testing.T) {
	content := "Controls AC-102 and CC6.1 were tested; AC-102 passed while ITGC-7 failed."
	result := Classify(content)

	want := []string{"AC-102", "CC6.1", "ITGC-7"}
	if !reflect.DeepEqual(result.ControlIDs, want) {
		t.Errorf("ControlIDs = %v, want %v", result.ControlIDs, want)
	}
}
