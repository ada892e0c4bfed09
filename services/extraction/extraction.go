package extraction

import (
	"regexp"
	"strings"

	"github.com/samber/mo"

	"inboundbot/models"
)

const customerAdminMarker = "customer admin"

var (
	mailtoLinkRegex   = regexp.MustCompile(`(?i)<mailto:([^|>\s]+)(?:\|[^>]*)?>`)
	slackLinkRegex    = regexp.MustCompile(`<((?:https?|tel):[^|>\s]+)(?:\|([^>]*))?>`)
	emphasisRegex     = regexp.MustCompile(`[*~]+`)
	underscoreRegex   = regexp.MustCompile(`(^|\s)_+|_+(\s|$)`)
	emailRegex        = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	adminMarkerRegex  = regexp.MustCompile(`(?i)customer admin:`)
	companyLineRegex  = regexp.MustCompile(`(?i)customer name:([^\n]*)`)
	fieldLabelRegex   = regexp.MustCompile(`^\s*\p{L}[\p{L}\d /&()-]{0,40}:`)
	emailLabelRegex   = regexp.MustCompile(`(?i)^\s*e-?mail(?: address)?:`)
	nameToken         = `\p{L}[\p{L}\p{M}'’-]*`
	nameTokenRegex    = regexp.MustCompile(`^` + nameToken + `$`)
	adjacentNameRegex = regexp.MustCompile(`^\s*(` + nameToken + `)\s+(` + nameToken + `)(?:\s+|\s*[,(<\-–:]\s*)` + emailRegex.String())
)

// Strategy is a single extraction attempt over normalized text
type Strategy[T any] func(text string) mo.Option[T]

// FirstOf runs strategies in order and returns the first present value
func FirstOf[T any](strategies ...Strategy[T]) Strategy[T] {
	return func(text string) mo.Option[T] {
		for _, strategy := range strategies {
			if value := strategy(text); value.IsPresent() {
				return value
			}
		}
		return mo.None[T]()
	}
}

var (
	emailStrategies = FirstOf[string](emailInAdminSpan, emailOnAdminLine)
	nameStrategies  = FirstOf[models.PersonName](nameAdjacentToEmail, nameAfterAdminMarker)
)

// Extract parses a notification body into the customer fields the resolver needs.
// It never fails; absent fields are None.
func Extract(text string) models.ExtractedFields {
	normalized := NormalizeMarkup(text)
	return models.ExtractedFields{
		Email:       emailStrategies(normalized),
		CompanyName: companyName(normalized),
		PersonName:  nameStrategies(normalized),
	}
}

// ExtractEmail returns the customer admin email address
func ExtractEmail(text string) mo.Option[string] {
	return emailStrategies(NormalizeMarkup(text))
}

// ExtractCompanyName returns the remainder of the "Customer Name:" line
func ExtractCompanyName(text string) mo.Option[string] {
	return companyName(NormalizeMarkup(text))
}

// ExtractPersonName returns the customer admin first and last name
func ExtractPersonName(text string) mo.Option[models.PersonName] {
	return nameStrategies(NormalizeMarkup(text))
}

// NormalizeMarkup collapses Slack mailto and link wrappers and strips emphasis characters
func NormalizeMarkup(text string) string {
	result := mailtoLinkRegex.ReplaceAllString(text, "$1")
	result = slackLinkRegex.ReplaceAllStringFunc(result, func(match string) string {
		parts := slackLinkRegex.FindStringSubmatch(match)
		if strings.TrimSpace(parts[2]) != "" {
			return parts[2]
		}
		return parts[1]
	})
	result = emphasisRegex.ReplaceAllString(result, "")
	return stripUnderscoreEmphasis(result)
}

// stripUnderscoreEmphasis removes _emphasis_ markers outside email addresses
func stripUnderscoreEmphasis(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range emailRegex.FindAllStringIndex(text, -1) {
		b.WriteString(underscoreRegex.ReplaceAllString(text[last:loc[0]], "$1$2"))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(underscoreRegex.ReplaceAllString(text[last:], "$1$2"))
	return b.String()
}

// adminSpan returns the text after "Customer Admin:" up to the next blank line or labelled field.
// An "Email:" line continues the span.
func adminSpan(text string) (string, bool) {
	loc := adminMarkerRegex.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	lines := strings.Split(text[loc[1]:], "\n")
	span := []string{lines[0]}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" || (fieldLabelRegex.MatchString(line) && !emailLabelRegex.MatchString(line)) {
			break
		}
		span = append(span, line)
	}
	return strings.Join(span, " "), true
}

func emailInAdminSpan(text string) mo.Option[string] {
	span, ok := adminSpan(text)
	if !ok {
		return mo.None[string]()
	}
	return firstEmail(span)
}

func emailOnAdminLine(text string) mo.Option[string] {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(strings.ToLower(line), customerAdminMarker) {
			continue
		}
		if email := firstEmail(line); email.IsPresent() {
			return email
		}
	}
	return mo.None[string]()
}

func firstEmail(text string) mo.Option[string] {
	if match := emailRegex.FindString(text); match != "" {
		return mo.Some(match)
	}
	return mo.None[string]()
}

func companyName(text string) mo.Option[string] {
	for _, match := range companyLineRegex.FindAllStringSubmatch(text, -1) {
		if name := strings.TrimSpace(match[1]); name != "" {
			return mo.Some(name)
		}
	}
	return mo.None[string]()
}

func nameAdjacentToEmail(text string) mo.Option[models.PersonName] {
	span, ok := adminSpan(text)
	if !ok {
		return mo.None[models.PersonName]()
	}
	match := adjacentNameRegex.FindStringSubmatch(span)
	if match == nil {
		return mo.None[models.PersonName]()
	}
	return mo.Some(models.PersonName{FirstName: match[1], LastName: match[2]})
}

func nameAfterAdminMarker(text string) mo.Option[models.PersonName] {
	for _, line := range strings.Split(text, "\n") {
		loc := adminMarkerRegex.FindStringIndex(line)
		if loc == nil {
			continue
		}
		tokens := strings.Fields(line[loc[1]:])
		if len(tokens) < 2 {
			continue
		}
		first := strings.Trim(tokens[0], ",;")
		last := strings.Trim(tokens[1], ",;")
		if nameTokenRegex.MatchString(first) && nameTokenRegex.MatchString(last) {
			return mo.Some(models.PersonName{FirstName: first, LastName: last})
		}
	}
	return mo.None[models.PersonName]()
}
