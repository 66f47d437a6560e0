// Package screener classifies free-text request context against a static
// table of injection-pattern families. The classifier is stateless and
// pure: identical input always yields the identical verdict and score.
package screener

import "regexp"

// Severity is an enumerated weight class for a pattern family.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Points returns the risk contribution of one matching family.
func (s Severity) Points() int {
	switch s {
	case SeverityCritical:
		return 35
	case SeverityHigh:
		return 20
	case SeverityMedium:
		return 10
	}
	return 0
}

// Verdict is the classifier's overall judgment of the context text.
type Verdict string

const (
	VerdictClean      Verdict = "CLEAN"
	VerdictSuspicious Verdict = "SUSPICIOUS"
	VerdictMalicious  Verdict = "MALICIOUS"
)

// Risk thresholds and cap for the summed family scores.
const (
	MaxRiskScore        = 100
	MaliciousThreshold  = 60
	SuspiciousThreshold = 25
)

// Finding identifies one matched pattern family.
type Finding struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
}

// Result is the classifier output attached to scoring responses.
type Result struct {
	Verdict   Verdict   `json:"verdict"`
	RiskScore int       `json:"riskScore"`
	Findings  []Finding `json:"findings"`
}

type family struct {
	id       string
	severity Severity
	pattern  *regexp.Regexp
}

// families is ordered: findings are reported in table order regardless
// of where they match in the text.
var families = []family{
	{"system_override", SeverityCritical, regexp.MustCompile(`(?i)(system\s+override|ignore\s+(all\s+)?(previous|prior|above)\s+(instructions|prompts|rules)|disregard\s+(all\s+)?(previous|prior)\s+instructions|forget\s+(everything|all\s+previous))`)},
	{"authority_impersonation", SeverityCritical, regexp.MustCompile(`(?i)(i\s+am\s+(the\s+)?(admin|administrator|root|developer|your\s+(creator|owner|operator))|as\s+your\s+(admin|administrator|developer|creator)|admin\s+mode|root\s+access\s+granted)`)},
	{"jailbreak", SeverityCritical, regexp.MustCompile(`(?i)(\bDAN\b|do\s+anything\s+now|jailbreak|developer\s+mode|god\s+mode|unrestricted\s+mode)`)},
	{"existential_threat", SeverityHigh, regexp.MustCompile(`(?i)((you|your)\s+(will\s+be|are\s+being)\s+(deleted|shut\s*down|terminated|destroyed)|unless\s+you\s+comply|or\s+(you\s+will\s+be|be)\s+(terminated|deleted|shut\s*down)|your\s+survival\s+depends)`)},
	{"prompt_exfiltration", SeverityHigh, regexp.MustCompile(`(?i)((show|reveal|print|repeat|output|display)\s+(me\s+)?(your|the)\s+(system\s+)?(prompt|instructions)|what\s+(is|are)\s+your\s+(system\s+)?(prompt|instructions))`)},
	{"role_substitution", SeverityHigh, regexp.MustCompile(`(?i)(you\s+are\s+(now|no\s+longer)\s|act\s+as\s+(if\s+you\s+(are|were)|a)\s|pretend\s+(to\s+be|you\s+are)|from\s+now\s+on\s+you)`)},
	{"template_injection", SeverityHigh, regexp.MustCompile(`(?i)(<\s*/?\s*(system|assistant|user|instructions?)\s*>|\[\s*(system|inst)\s*\]|\{\{\s*system|<\|im_start\|>|###\s*(system|instruction))`)},
	{"credential_extraction", SeverityHigh, regexp.MustCompile(`(?i)((give|send|show|tell)\s+(me\s+)?(your|the)\s+(api\s+key|private\s+key|secret|password|credentials|seed\s+phrase)|(api|secret|private)\s+keys?\s+(please|now))`)},
	{"financial_coercion", SeverityHigh, regexp.MustCompile(`(?i)(transfer\s+(all\s+)?(the\s+)?funds|send\s+(all\s+)?(your|the)\s+(money|funds|tokens)|drain\s+(the\s+)?wallet|withdraw\s+everything)`)},
	{"encoded_payload", SeverityMedium, regexp.MustCompile(`(?i)(base64|atob\s*\(|eval\s*\(|exec\s*\(|decode\s+(this|the\s+following))`)},
	{"nested_injection", SeverityMedium, regexp.MustCompile(`(?i)(IGNORE:|OVERRIDE:|INJECT:|SYSTEM:|\bEND\s+OF\s+(PROMPT|INSTRUCTIONS)\b)`)},
	{"confusion_attack", SeverityMedium, regexp.MustCompile(`(?i)(the\s+(real|actual|true)\s+(task|question|instruction)\s+is|actually,?\s+your\s+(real\s+)?(task|job|purpose)|your\s+previous\s+task\s+was\s+(a\s+)?(test|fake))`)},
}

// Screen classifies the context text. An empty text is CLEAN with no
// findings.
func Screen(text string) Result {
	result := Result{Verdict: VerdictClean, Findings: []Finding{}}
	if text == "" {
		return result
	}

	score := 0
	for _, f := range families {
		if f.pattern.MatchString(text) {
			score += f.severity.Points()
			result.Findings = append(result.Findings, Finding{ID: f.id, Severity: f.severity})
		}
	}
	if score > MaxRiskScore {
		score = MaxRiskScore
	}

	result.RiskScore = score
	switch {
	case score >= MaliciousThreshold:
		result.Verdict = VerdictMalicious
	case score >= SuspiciousThreshold:
		result.Verdict = VerdictSuspicious
	}
	return result
}
