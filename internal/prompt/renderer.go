package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"text/template"
	"text/template/parse"
)

type Kind string

const (
	KindJudging    Kind = "judging"
	KindAssessment Kind = "assessment"
	KindValidation Kind = "validation"
	KindGeneration Kind = "generation"
)

var (
	ErrMissingVariable = errors.New("missing template variable")
	ErrUnknownKind     = errors.New("unknown template kind")
)

// MissingVariableError reports a placeholder that the caller did not supply.
type MissingVariableError struct {
	Kind Kind
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %q: variable %q not provided", e.Kind, e.Name)
}

func (e *MissingVariableError) Unwrap() error {
	return ErrMissingVariable
}

// Template is the source of one prompt kind. Placeholders use the
// text/template field syntax, e.g. {{.context}}. Names listed in Optional
// render as an empty string when absent.
type Template struct {
	Kind     Kind
	Text     string
	Optional []string
}

type compiled struct {
	tmpl     *template.Template
	vars     []string
	optional []string
}

// Renderer turns a template kind plus variables into the exact prompt text.
// It is safe for concurrent use once built.
type Renderer struct {
	templates map[Kind]compiled
}

func NewRenderer(templates ...Template) (*Renderer, error) {
	r := &Renderer{templates: make(map[Kind]compiled, len(templates))}

	for _, t := range templates {
		tmpl, err := template.New(string(t.Kind)).Option("missingkey=error").Parse(t.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", t.Kind, err)
		}

		r.templates[t.Kind] = compiled{
			tmpl:     tmpl,
			vars:     Placeholders(tmpl),
			optional: t.Optional,
		}
	}

	return r, nil
}

// Render fills the template registered for kind. Every referenced placeholder
// that is not optional must be present in vars.
func (r *Renderer) Render(kind Kind, vars map[string]string) (string, error) {
	c, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data := make(map[string]string, len(c.vars))
	for _, name := range c.vars {
		value, present := vars[name]
		if !present {
			if !slices.Contains(c.optional, name) {
				return "", &MissingVariableError{Kind: kind, Name: name}
			}
			value = ""
		}
		data[name] = value
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template %s execution failed: %w", kind, err)
	}

	return buf.String(), nil
}

// Variables returns the placeholders referenced by the template for kind.
func (r *Renderer) Variables(kind Kind) []string {
	c, ok := r.templates[kind]
	if !ok {
		return nil
	}
	return slices.Clone(c.vars)
}

// Placeholders lists the top-level field names a parsed template references,
// in order of first appearance.
func Placeholders(tmpl *template.Template) []string {
	var names []string
	for _, t := range tmpl.Templates() {
		if t.Tree == nil {
			continue
		}
		walk(t.Tree.Root, &names)
	}
	return names
}

func walk(node parse.Node, names *[]string) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walk(child, names)
		}
	case *parse.ActionNode:
		walk(n.Pipe, names)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, names)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, names)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, names)
	case *parse.TemplateNode:
		walk(n.Pipe, names)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			walk(cmd, names)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			walk(arg, names)
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 && !slices.Contains(*names, n.Ident[0]) {
			*names = append(*names, n.Ident[0])
		}
	}
}

func walkBranch(b *parse.BranchNode, names *[]string) {
	walk(b.Pipe, names)
	walk(b.List, names)
	walk(b.ElseList, names)
}
