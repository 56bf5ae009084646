package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calldeck/callquery/internal/schema"
)

// ValidationError represents a rejected query
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type blockedKeyword struct {
	name    string
	pattern *regexp.Regexp
}

var blockedKeywords = []blockedKeyword{
	{"INSERT", regexp.MustCompile(`(?i)\bINSERT\b`)},
	{"UPDATE", regexp.MustCompile(`(?i)\bUPDATE\b`)},
	{"DELETE", regexp.MustCompile(`(?i)\bDELETE\b`)},
	{"DROP", regexp.MustCompile(`(?i)\bDROP\b`)},
	{"CREATE", regexp.MustCompile(`(?i)\bCREATE\b`)},
	{"ALTER", regexp.MustCompile(`(?i)\bALTER\b`)},
	{"TRUNCATE", regexp.MustCompile(`(?i)\bTRUNCATE\b`)},
	{"EXECUTE", regexp.MustCompile(`(?i)\bEXECUTE\b`)},
	{"EXEC", regexp.MustCompile(`(?i)\bEXEC\b`)},
	{"--", regexp.MustCompile(`--`)},
}

var (
	stringLiteral = regexp.MustCompile(`'[^']*'`)
	tableRef      = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+(\w+)`)
)

// Validator gates model-generated SQL before it reaches the store. The policy
// is a whitelist: single read-only SELECT statements over known tables.
// Acceptance carries no guarantee of semantic correctness.
type Validator struct {
	desc *schema.Descriptor
}

// NewValidator creates a validator bound to a schema descriptor
func NewValidator(desc *schema.Descriptor) *Validator {
	return &Validator{desc: desc}
}

// Validate checks a candidate query against the policy, short-circuiting on
// the first violation. Pure function of the query text and the schema.
func (v *Validator) Validate(sql string) error {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return &ValidationError{Message: "empty SQL query"}
	}

	// 1. Must be a read query
	if !strings.HasPrefix(strings.ToUpper(sql), "SELECT") {
		return &ValidationError{Message: "only SELECT queries allowed"}
	}

	// Keyword and separator checks run on the text with string literals
	// stripped, so quoted data never trips the gate.
	stripped := stringLiteral.ReplaceAllString(sql, "''")

	// 2. No mutating or schema-altering keywords
	for _, kw := range blockedKeywords {
		if kw.pattern.MatchString(stripped) {
			return &ValidationError{Message: fmt.Sprintf("blocked keyword: %s", kw.name)}
		}
	}

	// 3. Single statement only
	remainder := strings.TrimSuffix(strings.TrimSpace(stripped), ";")
	if strings.Contains(remainder, ";") {
		return &ValidationError{Message: "multiple statements not allowed"}
	}

	// 4. Every referenced table must exist in the schema
	for _, m := range tableRef.FindAllStringSubmatch(stripped, -1) {
		if !v.desc.HasTable(m[1]) {
			return &ValidationError{Message: fmt.Sprintf("unknown table: %s", m[1])}
		}
	}

	return nil
}
