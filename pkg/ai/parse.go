package ai

import (
	"encoding/json"
	"strings"
)

var verdictFields = []string{
	"overallScore",
	"skillBreakdown",
	"strengths",
	"weaknesses",
	"resumeBullet",
	"plagiarismRisk",
}

// ParseVerdict decodes and validates the model's JSON answer. Markdown code
// fences are stripped first so fenced and unfenced payloads parse
// identically, despite the prompt forbidding fences. Parse failures return
// *InvalidResponseError; contract violations return *ValidationError naming
// the offending field. Breakdown keys must belong to the task's required
// skills set, matched case-insensitively.
func ParseVerdict(content string, requiredSkills []string) (Verdict, error) {
	cleaned := stripFences(content)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Verdict{}, &InvalidResponseError{Cause: err}
	}

	for _, field := range verdictFields {
		if _, ok := payload[field]; !ok {
			return Verdict{}, &ValidationError{Field: field, Reason: "is missing"}
		}
	}

	verdict := Verdict{}

	if err := json.Unmarshal(payload["overallScore"], &verdict.OverallScore); err != nil {
		return Verdict{}, &ValidationError{Field: "overallScore", Reason: "must be a number"}
	}
	if verdict.OverallScore < 0 || verdict.OverallScore > 100 {
		return Verdict{}, &ValidationError{Field: "overallScore", Reason: "must be between 0 and 100"}
	}

	if err := json.Unmarshal(payload["skillBreakdown"], &verdict.SkillBreakdown); err != nil {
		return Verdict{}, &ValidationError{Field: "skillBreakdown", Reason: "must map skill names to numbers"}
	}
	if len(verdict.SkillBreakdown) == 0 {
		return Verdict{}, &ValidationError{Field: "skillBreakdown", Reason: "must not be empty"}
	}

	allowed := make(map[string]struct{}, len(requiredSkills))
	for _, skill := range requiredSkills {
		allowed[strings.ToLower(skill)] = struct{}{}
	}
	for skill, score := range verdict.SkillBreakdown {
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(skill)]; !ok {
				return Verdict{}, &ValidationError{Field: "skillBreakdown", Reason: "contains unknown skill " + strings.TrimSpace(skill)}
			}
		}
		if score < 0 || score > 100 {
			return Verdict{}, &ValidationError{Field: "skillBreakdown", Reason: "score for " + skill + " must be between 0 and 100"}
		}
	}

	if err := json.Unmarshal(payload["strengths"], &verdict.Strengths); err != nil {
		return Verdict{}, &ValidationError{Field: "strengths", Reason: "must be a list of strings"}
	}
	if err := json.Unmarshal(payload["weaknesses"], &verdict.Weaknesses); err != nil {
		return Verdict{}, &ValidationError{Field: "weaknesses", Reason: "must be a list of strings"}
	}
	if err := json.Unmarshal(payload["resumeBullet"], &verdict.ResumeBullet); err != nil {
		return Verdict{}, &ValidationError{Field: "resumeBullet", Reason: "must be a string"}
	}

	if err := json.Unmarshal(payload["plagiarismRisk"], &verdict.PlagiarismRisk); err != nil {
		return Verdict{}, &ValidationError{Field: "plagiarismRisk", Reason: "must be a string"}
	}
	switch verdict.PlagiarismRisk {
	case "low", "medium", "high":
	default:
		return Verdict{}, &ValidationError{Field: "plagiarismRisk", Reason: `must be one of "low", "medium", "high"`}
	}

	return verdict, nil
}

func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	return strings.TrimSpace(cleaned)
}
