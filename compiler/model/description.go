package model

import (
	"fmt"
	"strings"

	"github.com/veld-lang/veld/compiler/errors"
)

// Description is a parsed doc comment: a one-paragraph summary, optional
// remark paragraphs, and an optional field list describing members,
// parameters or the return value. Below the model layer the description is
// treated as opaque.
type Description struct {
	Summary string
	Remarks []string
	Fields  []*DescriptionField
	Loc     errors.Position
}

// DescriptionField is one entry of a field list, e.g.
// ':param shells: The shells of the environment.'
type DescriptionField struct {
	Directive string // "field", "param" or "returns"
	Name      string // empty for "returns"
	Body      string
}

// FieldFor returns the field-list entry naming the given member, if any
func (d *Description) FieldFor(name string) (*DescriptionField, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return nil, false
}

var fieldDirectives = map[string]bool{
	"field": true, "param": true, "returns": true,
}

// ParseDescription parses the doc comment lines collected above a
// definition. It returns nil for an empty comment block.
func ParseDescription(lines []string, loc errors.Position) (*Description, *errors.CompilerError) {
	if len(lines) == 0 {
		return nil, nil
	}

	desc := &Description{Loc: loc}

	var paragraph []string
	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		text := strings.Join(paragraph, " ")
		paragraph = nil
		if desc.Summary == "" {
			desc.Summary = text
		} else {
			desc.Remarks = append(desc.Remarks, text)
		}
	}

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			flush()
			i++
		case strings.HasPrefix(line, ":"):
			flush()
			field, advance, err := parseField(lines, i, loc)
			if err != nil {
				return nil, err
			}
			desc.Fields = append(desc.Fields, field)
			i = advance
		default:
			paragraph = append(paragraph, line)
			i++
		}
	}
	flush()

	if desc.Summary == "" && len(desc.Fields) == 0 {
		return nil, nil
	}
	return desc, nil
}

// parseField parses one field-list entry starting at lines[start] and
// returns the entry along with the index of the first unconsumed line.
// Indented follow-up lines continue the entry's body.
func parseField(lines []string, start int, loc errors.Position) (*DescriptionField, int, *errors.CompilerError) {
	line := strings.TrimSpace(lines[start])

	end := strings.Index(line[1:], ":")
	if end < 0 {
		return nil, 0, errors.New("model",
			fmt.Sprintf("malformed field list entry, expected ':directive name: text' in %q", line),
			&loc)
	}
	head := strings.Fields(line[1 : end+1])
	if len(head) == 0 {
		return nil, 0, errors.New("model",
			fmt.Sprintf("malformed field list entry, missing directive in %q", line),
			&loc)
	}

	directive := head[0]
	if !fieldDirectives[directive] {
		return nil, 0, errors.New("model",
			fmt.Sprintf("unknown field list directive %q, expected 'field', 'param' or 'returns'", directive),
			&loc)
	}

	var name string
	switch {
	case directive == "returns":
		if len(head) > 1 {
			return nil, 0, errors.New("model",
				"the 'returns' directive does not take a name", &loc)
		}
	case len(head) == 2:
		name = head[1]
	default:
		return nil, 0, errors.New("model",
			fmt.Sprintf("the %q directive requires exactly one name", directive), &loc)
	}

	body := []string{strings.TrimSpace(line[end+2:])}
	i := start + 1
	for i < len(lines) {
		next := lines[i]
		trimmed := strings.TrimSpace(next)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") || next == trimmed {
			break
		}
		body = append(body, trimmed)
		i++
	}

	return &DescriptionField{
		Directive: directive,
		Name:      name,
		Body:      strings.TrimSpace(strings.Join(body, " ")),
	}, i, nil
}
