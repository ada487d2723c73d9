// Package frontend wires the compilation phases into a single entry point:
// lexing, parsing, building the syntax-level model, understanding the
// ontology and the constructors, in-lining and the final translation into
// the intermediate representation.
package frontend

import (
	"go.uber.org/zap"

	"github.com/veld-lang/veld/compiler/construct"
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/ir"
	"github.com/veld-lang/veld/compiler/lexer"
	"github.com/veld-lang/veld/compiler/model"
	"github.com/veld-lang/veld/compiler/ontology"
	"github.com/veld-lang/veld/compiler/parser"
	"github.com/veld-lang/veld/compiler/translate"
)

type config struct {
	logger     *zap.Logger
	sourceName string
}

// Option configures the compilation
type Option func(*config)

// WithLogger sets the logger for per-phase progress; the default is a
// no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithSourceName sets the name used in diagnostics, e.g. the file path
func WithSourceName(name string) Option {
	return func(c *config) { c.sourceName = name }
}

// Compile runs the whole front end on the source document and produces the
// final symbol table. On failure the errors of the failing phase are
// returned and the symbol table is nil; later phases are not attempted
// since they assume a verified input.
func Compile(source string, opts ...Option) (*ir.SymbolTable, []*errors.CompilerError) {
	cfg := &config{
		logger:     zap.NewNop(),
		sourceName: "<source>",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger.With(zap.String("source", cfg.sourceName))

	tokens, lexErrs := lexer.New(source).ScanTokens()
	if len(lexErrs) > 0 {
		logger.Debug("lexing failed", zap.Int("errors", len(lexErrs)))
		out := make([]*errors.CompilerError, len(lexErrs))
		for i, lexErr := range lexErrs {
			pos := errors.Position{Offset: lexErr.Offset}
			out[i] = errors.New("lexer", lexErr.Message, &pos)
		}
		return nil, out
	}
	logger.Debug("lexed", zap.Int("tokens", len(tokens)))

	doc, parseErrs := parser.New(tokens).Parse()
	if len(parseErrs) > 0 {
		logger.Debug("parsing failed", zap.Int("errors", len(parseErrs)))
		out := make([]*errors.CompilerError, len(parseErrs))
		for i, parseErr := range parseErrs {
			out[i] = parseErr.CompilerError()
		}
		return nil, out
	}
	logger.Debug("parsed", zap.Int("definitions", len(doc.Defs)))

	table, buildErrs := model.Build(doc)
	if len(buildErrs) > 0 {
		logger.Debug("model building failed", zap.Int("errors", len(buildErrs)))
		return nil, buildErrs
	}
	logger.Debug("built the syntax-level model", zap.Int("entities", len(table.Entities())))

	graph, ontErrs := ontology.FromSymbolTable(table)
	if len(ontErrs) > 0 {
		logger.Debug("ontology inference failed", zap.Int("errors", len(ontErrs)))
		return nil, ontErrs
	}
	logger.Debug("inferred the ontology", zap.Int("classes", len(graph.Classes)))

	constructors, err := construct.UnderstandAll(table)
	if err != nil {
		logger.Debug("constructor understanding failed")
		return nil, []*errors.CompilerError{err}
	}
	logger.Debug("understood the constructors")

	inLined := construct.InLine(table, graph, constructors)
	logger.Debug("in-lined the constructors")

	symbolTable, translateErrs := translate.Translate(table, graph, inLined)
	if len(translateErrs) > 0 {
		logger.Debug("translation failed", zap.Int("errors", len(translateErrs)))
		return nil, translateErrs
	}
	logger.Debug("translated to the intermediate representation",
		zap.Int("entities", len(symbolTable.Entities())))

	return symbolTable, nil
}

// Report renders the errors as a human-readable, color-free report with
// source context
func Report(source, sourceName string, errs []*errors.CompilerError) string {
	renderer := &errors.Renderer{
		Index:      errors.NewLineIndex(source),
		SourceName: sourceName,
		NoColor:    true,
	}
	return renderer.RenderReport(errs)
}
