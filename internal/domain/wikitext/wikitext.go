// Package wikitext reads and rewrites template parameters inside MediaWiki page
// source without disturbing the rest of the page.
package wikitext

import (
	"fmt"
	"strings"
)

// Param is one argument of a template call. Offsets index the page text.
type Param struct {
	Name       string // trimmed key, or the 1-based position for unnamed args
	Named      bool
	ValueStart int
	ValueEnd   int
}

// Template is a located template call.
type Template struct {
	Name   string
	Start  int // index of the opening braces
	End    int // index just past the closing braces
	Params []Param
}

// Find returns the first top-level call of the named template.
func Find(text, name string) (*Template, error) {
	want := canonicalName(name)
	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], "<!--"):
			i = skipComment(text, i)
		case strings.HasPrefix(text[i:], "{{"):
			t, err := parseTemplate(text, i)
			if err != nil {
				return nil, err
			}
			if canonicalName(t.Name) == want {
				return t, nil
			}
			i = t.End
		default:
			i++
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// Param looks up a named parameter. The last occurrence wins, as on the wiki.
func (t *Template) Param(name string) (Param, error) {
	want := strings.TrimSpace(name)
	for i := len(t.Params) - 1; i >= 0; i-- {
		if t.Params[i].Name == want {
			return t.Params[i], nil
		}
	}
	return Param{}, fmt.Errorf("%w: %q in %q", ErrParamNotFound, name, t.Name)
}

// GetParam returns the raw value of a template parameter.
func GetParam(text, template, param string) (string, error) {
	t, err := Find(text, template)
	if err != nil {
		return "", err
	}
	p, err := t.Param(param)
	if err != nil {
		return "", err
	}
	return text[p.ValueStart:p.ValueEnd], nil
}

// SetParam replaces the raw value of an existing template parameter and returns
// the new page text.
func SetParam(text, template, param, value string) (string, error) {
	t, err := Find(text, template)
	if err != nil {
		return "", err
	}
	p, err := t.Param(param)
	if err != nil {
		return "", err
	}
	return text[:p.ValueStart] + value + text[p.ValueEnd:], nil
}

func parseTemplate(text string, start int) (*Template, error) {
	t := &Template{Start: start}
	braces, links := 1, 0
	segStart := start + 2
	var segments [][2]int

	i := start + 2
	for i < len(text) {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			i = skipComment(text, i)
			continue
		case strings.HasPrefix(rest, "{{"):
			braces++
			i += 2
			continue
		case strings.HasPrefix(rest, "}}"):
			braces--
			if braces == 0 {
				segments = append(segments, [2]int{segStart, i})
				t.End = i + 2
				t.fill(text, segments)
				return t, nil
			}
			i += 2
			continue
		case strings.HasPrefix(rest, "[["):
			links++
			i += 2
			continue
		case strings.HasPrefix(rest, "]]") && links > 0:
			links--
			i += 2
			continue
		case rest[0] == '|' && braces == 1 && links == 0:
			segments = append(segments, [2]int{segStart, i})
			segStart = i + 1
		}
		i++
	}
	return nil, fmt.Errorf("%w: template at offset %d", ErrUnbalanced, start)
}

func (t *Template) fill(text string, segments [][2]int) {
	t.Name = strings.TrimSpace(text[segments[0][0]:segments[0][1]])
	position := 0
	for _, seg := range segments[1:] {
		raw := text[seg[0]:seg[1]]
		if eq := topLevelEquals(raw); eq >= 0 {
			t.Params = append(t.Params, Param{
				Name:       strings.TrimSpace(raw[:eq]),
				Named:      true,
				ValueStart: seg[0] + eq + 1,
				ValueEnd:   seg[1],
			})
			continue
		}
		position++
		t.Params = append(t.Params, Param{
			Name:       fmt.Sprint(position),
			ValueStart: seg[0],
			ValueEnd:   seg[1],
		})
	}
}

// topLevelEquals finds the key separator of an argument, ignoring '=' inside
// nested templates and links.
func topLevelEquals(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{"), strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case strings.HasPrefix(s[i:], "}}"), strings.HasPrefix(s[i:], "]]"):
			depth--
			i++
		case s[i] == '=' && depth == 0:
			return i
		}
	}
	return -1
}

func skipComment(text string, i int) int {
	end := strings.Index(text[i+4:], "-->")
	if end < 0 {
		return len(text)
	}
	return i + 4 + end + 3
}

func canonicalName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "_", " ")
	return strings.Join(strings.Fields(name), " ")
}
