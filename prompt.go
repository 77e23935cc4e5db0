package selfeval

import (
	"fmt"
	"strings"
)

// BuildEvaluationPrompt renders the self-evaluation prompt for a candidate
// output and a rhetorical yes/no question about it.
func BuildEvaluationPrompt(candidate, question string) string {
	return fmt.Sprintf(`As an oracle of truth and logic, your task is to evaluate an LLM-generated response by answering a simple rhetorical question based on the context of that response.
You have been provided with the 'LLM Response' and a 'Question', and you need to generate 'Your Answer'.
Please answer the question with just a 'Yes' or a 'No'. If you're unsure, say 'Unsure'. Any other text is forbidden.
You'll be evaluated based on how well you understand the question and how well you follow the instructions to answer the question.

LLM Response:
%s

Question:
%s

Your Answer:
`, candidate, question)
}

// BuildResponsivenessQuestion derives the evaluation question from the prompt
// originally given to the primary LLM.
func BuildResponsivenessQuestion(originalPrompt string) string {
	return "Does this Response respond to the following Prompt? Prompt: " + originalPrompt
}

// QuestionFor resolves the evaluation question from metadata. A validation
// question takes precedence over one derived from the original prompt.
func QuestionFor(md Metadata) (string, error) {
	if q := md.String(KeyValidationQuestion); q != "" {
		return q, nil
	}
	if p := md.String(KeyOriginalPrompt); p != "" {
		return BuildResponsivenessQuestion(p), nil
	}
	return "", fmt.Errorf("%w: provide %q or %q", ErrMissingContext, KeyValidationQuestion, KeyOriginalPrompt)
}

// ParseVerdict classifies a raw evaluator reply. Only an exact "yes" or "no"
// (ignoring case and surrounding whitespace) is conclusive.
func ParseVerdict(reply string) Verdict {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "no":
		return VerdictNo
	case "yes":
		return VerdictYes
	default:
		return VerdictUnsure
	}
}
