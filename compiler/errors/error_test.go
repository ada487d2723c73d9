package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndexLocate(t *testing.T) {
	source := "first line\nsecond\n\nfourth"
	ix := NewLineIndex(source)

	tests := []struct {
		name   string
		offset int
		line   int
		column int
	}{
		{"start of document", 0, 1, 1},
		{"middle of first line", 6, 1, 7},
		{"start of second line", 11, 2, 1},
		{"empty third line", 18, 3, 1},
		{"last character", 24, 4, 6},
		{"past the end", 1000, 4, 7},
		{"negative clamps to start", -5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, column := ix.Locate(Position{Offset: tt.offset})
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestLineIndexLine(t *testing.T) {
	ix := NewLineIndex("alpha\nbeta\r\ngamma")

	assert.Equal(t, "alpha", ix.Line(1))
	assert.Equal(t, "beta", ix.Line(2))
	assert.Equal(t, "gamma", ix.Line(3))
	assert.Equal(t, "", ix.Line(0))
	assert.Equal(t, "", ix.Line(4))
}

func TestErrorString(t *testing.T) {
	e := New("parser", "expected '{'", &Position{Offset: 42})
	assert.Equal(t, "@42: parser: expected '{'", e.Error())

	e = New("translate", "no entities", nil)
	assert.Equal(t, "translate: no entities", e.Error())
}

func TestWithUnderlying(t *testing.T) {
	inner := New("construct", "unexpected statement", &Position{Offset: 10})
	outer := New("construct", "failed to understand the constructor", &Position{Offset: 5}).
		WithUnderlying(inner)

	require.Len(t, outer.Underlying, 1)
	assert.Same(t, inner, outer.Underlying[0])
}

func TestMarshalJSON(t *testing.T) {
	e := NewFatal("ontology", "cycle detected", &Position{Offset: 7})

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(
		t,
		`{"phase":"ontology","message":"cycle detected","severity":"fatal","pos":{"offset":7}}`,
		string(data),
	)
}

func TestRendererRender(t *testing.T) {
	source := "class A extends B {\n}\n"
	r := &Renderer{
		Index:      NewLineIndex(source),
		SourceName: "model.veld",
		NoColor:    true,
	}

	e := New("parser", "expected a class name", &Position{Offset: 6})
	out := r.Render(e)

	assert.Contains(t, out, "Error: expected a class name")
	assert.Contains(t, out, "model.veld:1:7")
	assert.Contains(t, out, "class A extends B {")
	assert.Contains(t, out, "      ^")
}

func TestRendererRenderReportNested(t *testing.T) {
	r := &Renderer{Index: NewLineIndex("x"), SourceName: "m.veld", NoColor: true}

	e := New("construct", "failed to understand the constructor of the class Item", nil).
		WithUnderlying(New("construct", "unexpected statement", nil))
	out := r.RenderReport([]*CompilerError{e})

	assert.Contains(t, out, "Error: failed to understand the constructor of the class Item")
	assert.Contains(t, out, "  Error: unexpected statement")
	assert.Contains(t, out, "Compilation failed with 1 error(s)")
}

func TestStripColors(t *testing.T) {
	assert.Equal(t, "plain", StripColors("\033[31mplain\033[0m"))
}
