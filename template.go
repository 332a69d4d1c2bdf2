package pagemill

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/osteele/liquid"
	"github.com/pkg/errors"
)

const defaultDateLocale = "en-GB"

// Render expands tpl against vars using Liquid syntax: interpolation,
// conditionals, loops and filters, plus a date filter (see dateFilter). A
// fresh engine is built per call so no template or filter state leaks between
// renders. Undefined variables render empty; syntax errors and failing
// filters yield a *TemplateError.
func Render(tpl string, vars map[string]interface{}) (string, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("date", dateFilter)

	out, err := engine.ParseAndRenderString(tpl, vars)
	if err != nil {
		return "", &TemplateError{Err: err}
	}
	return out, nil
}

// dateFilter implements {{ value | date: "dd/MM/yyyy", "en-GB" }}. The value
// is either the literal "now", an ISO-8601 timestamp interpreted in UTC, or an
// already decoded time.Time. The locale argument defaults to en-GB.
func dateFilter(value interface{}, format string, locale func(string) string) (string, error) {
	t, err := filterTime(value)
	if err != nil {
		return "", err
	}
	loc := strings.ReplaceAll(locale(defaultDateLocale), "-", "_")
	return monday.Format(t, goLayout(format), monday.Locale(loc)), nil
}

func filterTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		if v == "now" {
			return time.Now(), nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errors.Errorf("date: not a timestamp: %v", value)
}

// layoutTokens maps date pattern tokens to Go reference layout fragments,
// longest token first.
var layoutTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"a", "PM"},
}

func goLayout(format string) string {
	var b strings.Builder
	for len(format) > 0 {
		matched := false
		for _, t := range layoutTokens {
			if strings.HasPrefix(format, t.token) {
				b.WriteString(t.layout)
				format = format[len(t.token):]
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[0])
			format = format[1:]
		}
	}
	return b.String()
}
