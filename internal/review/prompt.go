package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SystemPrompt is the fixed instruction sent with every review request.
const SystemPrompt = "You are an expert code reviewer with extensive experience in software development best practices."

// Language returns the syntax tag for a file: the text after its last dot,
// or "text" when the name has no extension.
func Language(filename string) string {
	base := filepath.Base(filename)
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return "text"
	}
	return base[i+1:]
}

// BuildPrompt generates the user prompt asking a model to review one file
// and answer with a JSON ReviewReport.
func BuildPrompt(filename, content string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Please review the following code file %q for readability, modularity, and potential bugs.\n", filename)
	b.WriteString("Provide a comprehensive analysis with specific improvement suggestions.\n\n")

	b.WriteString("Code to review:\n")
	fmt.Fprintf(&b, "```%s\n", Language(filename))
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")

	b.WriteString("Please provide your analysis in the following JSON format:\n")
	b.WriteString(`{
    "report": "Detailed analysis of the code...",
    "scores": {
        "readability_score": 0.0-10.0,
        "modularity_score": 0.0-10.0,
        "bug_risk_score": 0.0-10.0,
        "overall_score": 0.0-10.0
    },
    "suggestions": [
        "Specific improvement suggestion 1",
        "Specific improvement suggestion 2",
        "..."
    ]
}
`)
	b.WriteString("\n")

	b.WriteString("Focus on:\n")
	b.WriteString("1. Code readability and clarity\n")
	b.WriteString("2. Modularity and separation of concerns\n")
	b.WriteString("3. Potential bugs and edge cases\n")
	b.WriteString("4. Best practices and conventions\n")
	b.WriteString("5. Performance considerations\n")
	b.WriteString("6. Security implications\n\n")

	b.WriteString("Provide actionable, specific suggestions for improvement.")

	return b.String()
}
