package ops

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/recipe"
)

// placeholder matches {{key}}, {{key::Format}} and {{key:type::Format}}.
var placeholder = regexp.MustCompile(`\{\{([\w\s-]+)(?::(\w+))?(?:::(.+?))?\}\}`)

var dateToken = regexp.MustCompile(`YYYY|YY|MM|DD|HH|mm|ss`)

// Resolve substitutes placeholders in s from the run context.
//
//	{{filename}}                  input file name
//	{{Make}}                      metadata value
//	{{city::UpperCase}}           UpperCase, LowerCase or TitleCase
//	{{date:dateTime::YYYY-MM-DD}} date formatting with YYYY YY MM DD HH mm ss
//
// Placeholders naming unknown keys are left untouched.
func Resolve(s string, rc *recipe.Context) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		m := placeholder.FindStringSubmatch(match)
		key, typ, format := m[1], m[2], m[3]

		var value any
		if key == "filename" {
			value = rc.Filename
		} else if v, ok := rc.Metadata[key]; ok && v != nil {
			value = v
		} else {
			return match
		}
		str := formatValue(value)

		if typ == "dateTime" {
			if t, ok := recipe.ParseTime(value); ok && format != "" {
				return formatDate(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), format)
			}
			return str
		}
		switch strings.ToLower(format) {
		case "uppercase":
			return cases.Upper(language.Und).String(str)
		case "lowercase":
			return cases.Lower(language.Und).String(str)
		case "titlecase":
			return cases.Title(language.Und).String(str)
		}
		return str
	})
}

func formatDate(year, month, day, hour, minute, second int, layout string) string {
	return dateToken.ReplaceAllStringFunc(layout, func(tok string) string {
		switch tok {
		case "YYYY":
			return strconv.Itoa(year)
		case "YY":
			return fmt.Sprintf("%02d", year%100)
		case "MM":
			return fmt.Sprintf("%02d", month)
		case "DD":
			return fmt.Sprintf("%02d", day)
		case "HH":
			return fmt.Sprintf("%02d", hour)
		case "mm":
			return fmt.Sprintf("%02d", minute)
		}
		return fmt.Sprintf("%02d", second)
	})
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
