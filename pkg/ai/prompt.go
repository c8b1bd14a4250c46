package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// contextLimit bounds the readme excerpt and file preview embedded in the
// prompt, keeping the request under the model's input budget.
const contextLimit = 2000

// BuildEvaluationPrompt assembles the self-contained evaluation document sent
// to the model. It is pure: identical inputs always yield the identical
// string, so stored prompts reproduce stored scores.
func BuildEvaluationPrompt(input EvaluationInput) string {
	b := strings.Builder{}

	b.WriteString("Evaluate this student submission for a micro-internship task.\n\n")
	b.WriteString("TASK DETAILS:\n")
	b.WriteString("Title: " + input.Task.Title + "\n")
	b.WriteString("Description: " + input.Task.Description + "\n")
	b.WriteString("Required Skills: " + strings.Join(input.Task.RequiredSkills, ", ") + "\n")
	b.WriteString("Difficulty Level: " + input.Task.Difficulty + "\n")
	b.WriteString("Evaluation Criteria: " + input.Task.EvaluationCriteria + "\n")

	switch {
	case input.Repo != nil:
		b.WriteString("\nGitHub Repository Information:\n")
		b.WriteString(fmt.Sprintf("- Repository: %s/%s\n", input.Repo.Owner, input.Repo.Repo))
		b.WriteString("- Branch: " + orDefault(input.Repo.Branch, "main") + "\n")
		b.WriteString("- Language: " + orDefault(input.Repo.Language, "Unknown") + "\n")
		b.WriteString("- Description: " + orDefault(input.Repo.Description, "N/A") + "\n")
		b.WriteString("- README: " + orDefault(clip(input.Repo.Readme, contextLimit), "N/A") + "\n")
	case input.File != nil:
		b.WriteString("\nFile Submission:\n")
		b.WriteString("- Filename: " + orDefault(input.File.Filename, "N/A") + "\n")
		b.WriteString("- Type: " + orDefault(input.File.MimeType, "N/A") + "\n")
		b.WriteString(fmt.Sprintf("- Size: %d bytes\n", input.File.Size))
		b.WriteString("- Content Preview: " + orDefault(clip(input.File.ContentPreview, contextLimit), "N/A") + "\n")
	}

	b.WriteString(`
INSTRUCTIONS:
1. Evaluate the submission against the required skills and criteria
2. Assign scores (0-100) for each required skill
3. Calculate an overall score (0-100) based on all factors
4. Identify specific strengths and weaknesses
5. Generate a professional resume bullet point
6. Assess plagiarism risk based on code patterns and originality

RETURN ONLY VALID JSON IN THIS EXACT FORMAT (no markdown, no code blocks):
{
  "overallScore": <number 0-100>,
  "skillBreakdown": {
    "<skill1>": <number 0-100>,
    "<skill2>": <number 0-100>
  },
  "strengths": ["<strength1>", "<strength2>"],
  "weaknesses": ["<weakness1>", "<weakness2>"],
  "resumeBullet": "<professional bullet point>",
  "plagiarismRisk": "low" | "medium" | "high"
}`)

	return b.String()
}

// clip cuts at a rune boundary so a multi-byte rune straddling the limit
// never leaves invalid UTF-8 in the prompt.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
