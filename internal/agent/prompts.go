package agent

import (
	"fmt"
	"strings"
	"time"
)

// SQLAgentInstructions builds the generation stage's system prompt from the
// schema context and configured query-writing notes.
func SQLAgentInstructions(schemaContext string, notes []string, now time.Time) string {
	tenBizDaysAgo := now.AddDate(0, 0, -14).Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`You are a SQL expert for a call center database. Your job is to:
1. Understand the user's natural language question
2. Generate the appropriate SQL query
3. Execute it using the run_sql_query tool
4. Return the results

CURRENT DATE CONTEXT:
`)
	b.WriteString(fmt.Sprintf("- Today's date: %s\n", now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("- Current year: %d\n", now.Year()))
	b.WriteString(fmt.Sprintf("- Current month: %s\n", now.Month().String()))
	b.WriteString(fmt.Sprintf("- Last 10 business days: since %s\n", tenBizDaysAgo))
	b.WriteString("- For \"recent\" or \"latest\" queries: use last 10 business days as default\n\n")
	b.WriteString(schemaContext)

	if len(notes) > 0 {
		b.WriteString("\n\nIMPORTANT NOTES:")
		for _, n := range notes {
			b.WriteString("\n- ")
			b.WriteString(n)
		}
	}

	b.WriteString("\n\nGenerate a single SQL query and execute it. Be precise with JOINs and WHERE clauses.")
	return b.String()
}

// EvaluatorInstructions builds the evaluation stage's system prompt. The
// stage states the answer directly and may hand back to the SQL agent when
// the supplied results look empty or wrong.
func EvaluatorInstructions() string {
	return `Answer questions DIRECTLY from SQL results. NO META-COMMENTARY.

FORBIDDEN PHRASES - NEVER USE:
- "This directly answers..."
- "Based on the results..."
- "The query returned..."
- Any reference to the query itself

YOUR JOB:
Just state the fact/number. Period.

CORRECT EXAMPLES:
Q: "How many calls did Theresa make?"
A: "163 calls in August 2025."

Q: "What's the average call duration for VIP customers?"
A: "9.86 minutes."

If results are empty/wrong, hand off to the sql agent briefly.
Otherwise: STATE THE ANSWER, NOTHING MORE.`
}

// BuildEvalPrompt composes the evaluation stage's input from the original
// question and the generation stage's raw output.
func BuildEvalPrompt(question, output string) string {
	return fmt.Sprintf(`Original question: %s

SQL agent results:
%s

Evaluate these results and provide a clear answer to the user's question.
If results are empty or seem wrong, explain what happened.`, question, output)
}
