package salesforce

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// LikePattern is a LIKE argument whose value is escaped but whose wildcards are kept
type LikePattern struct {
	prefix string
	value  string
	suffix string
}

// Contains matches values containing v as a substring
func Contains(v string) LikePattern {
	return LikePattern{prefix: "%", value: v, suffix: "%"}
}

// Select starts a SOQL SELECT. Values passed to Where clauses are bound as escaped literals by Build.
func Select(columns ...string) sq.SelectBuilder {
	return sq.Select(columns...)
}

// Build renders a squirrel statement as SOQL, binding every placeholder as an escaped literal
func Build(statement sq.Sqlizer) (string, error) {
	query, args, err := statement.ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build SOQL statement: %w", err)
	}

	var builder strings.Builder
	argIndex := 0
	for _, r := range query {
		if r != '?' {
			builder.WriteRune(r)
			continue
		}
		if argIndex >= len(args) {
			return "", fmt.Errorf("SOQL statement has more placeholders than arguments")
		}
		literal, err := Literal(args[argIndex])
		if err != nil {
			return "", err
		}
		builder.WriteString(literal)
		argIndex++
	}
	if argIndex != len(args) {
		return "", fmt.Errorf("SOQL statement has %d unused arguments", len(args)-argIndex)
	}

	return builder.String(), nil
}

// Literal renders a Go value as a SOQL literal
func Literal(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return "'" + EscapeString(v) + "'", nil
	case LikePattern:
		return "'" + v.prefix + escapeLikeWildcards(EscapeString(v.value)) + v.suffix + "'", nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case nil:
		return "null", nil
	default:
		return "", fmt.Errorf("unsupported SOQL literal type %T", value)
	}
}

var soqlStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

// EscapeString escapes a value for use inside a single-quoted SOQL string literal
func EscapeString(value string) string {
	return soqlStringEscaper.Replace(value)
}

func escapeLikeWildcards(value string) string {
	return strings.NewReplacer("%", `\%`, "_", `\_`).Replace(value)
}
