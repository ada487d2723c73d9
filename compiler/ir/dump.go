package ir

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/veld-lang/veld/compiler/construct"
	"github.com/veld-lang/veld/compiler/exprtree"
	"github.com/veld-lang/veld/compiler/model"
)

// Dump renders the symbol table as YAML. The output is deterministic: it
// follows the declaration order of the entities and the stacked order of
// the members, so it is suitable for golden tests and for diffing two
// versions of a meta-model.
func Dump(table *SymbolTable) (string, error) {
	doc := make([]interface{}, 0, len(table.Entities()))
	for _, entity := range table.Entities() {
		switch e := entity.(type) {
		case *Enumeration:
			doc = append(doc, dumpEnumeration(e))
		case *Class:
			doc = append(doc, dumpClass(e))
		default:
			return "", fmt.Errorf("unexpected entity %T in the symbol table", entity)
		}
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type enumerationDump struct {
	Enumeration string         `yaml:"enumeration"`
	Description string         `yaml:"description,omitempty"`
	Literals    []*literalDump `yaml:"literals"`
}

type literalDump struct {
	Name        string `yaml:"name"`
	Value       string `yaml:"value"`
	Description string `yaml:"description,omitempty"`
}

type classDump struct {
	Class                  string             `yaml:"class"`
	Abstract               bool               `yaml:"abstract,omitempty"`
	ImplementationSpecific bool               `yaml:"implementation_specific,omitempty"`
	Description            string             `yaml:"description,omitempty"`
	Inheritances           []string           `yaml:"inheritances,omitempty"`
	Serialization          *serializationDump `yaml:"serialization,omitempty"`
	Properties             []*propertyDump    `yaml:"properties,omitempty"`
	Constructor            *constructorDump   `yaml:"constructor,omitempty"`
	Methods                []*methodDump      `yaml:"methods,omitempty"`
	Invariants             []*invariantDump   `yaml:"invariants,omitempty"`
}

type serializationDump struct {
	WithModelType bool `yaml:"with_model_type"`
}

type propertyDump struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	ReadOnly    bool   `yaml:"read_only,omitempty"`
	Description string `yaml:"description,omitempty"`
	SpecifiedIn string `yaml:"specified_in"`
}

type argumentDump struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	NullDefault bool   `yaml:"null_default,omitempty"`
}

type contractDump struct {
	Description string `yaml:"description,omitempty"`
	Body        string `yaml:"body"`
}

type snapshotDump struct {
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

type contractsDump struct {
	Preconditions  []*contractDump `yaml:"preconditions,omitempty"`
	Snapshots      []*snapshotDump `yaml:"snapshots,omitempty"`
	Postconditions []*contractDump `yaml:"postconditions,omitempty"`
}

type constructorDump struct {
	Arguments              []*argumentDump `yaml:"arguments,omitempty"`
	ImplementationSpecific bool            `yaml:"implementation_specific,omitempty"`
	Contracts              *contractsDump  `yaml:"contracts,omitempty"`
	Statements             []string        `yaml:"statements,omitempty"`
}

type methodDump struct {
	Name                   string          `yaml:"name"`
	ImplementationSpecific bool            `yaml:"implementation_specific,omitempty"`
	Arguments              []*argumentDump `yaml:"arguments,omitempty"`
	Returns                string          `yaml:"returns,omitempty"`
	Contracts              *contractsDump  `yaml:"contracts,omitempty"`
	Description            string          `yaml:"description,omitempty"`
}

type invariantDump struct {
	Description string `yaml:"description,omitempty"`
	Body        string `yaml:"body"`
	SpecifiedIn string `yaml:"specified_in"`
}

func dumpEnumeration(enum *Enumeration) *enumerationDump {
	dump := &enumerationDump{
		Enumeration: string(enum.Name),
		Description: summaryOf(enum.Description),
		Literals:    make([]*literalDump, len(enum.Literals)),
	}
	for i, literal := range enum.Literals {
		dump.Literals[i] = &literalDump{
			Name:        string(literal.Name),
			Value:       literal.Value,
			Description: summaryOf(literal.Description),
		}
	}
	return dump
}

func dumpClass(class *Class) *classDump {
	dump := &classDump{
		Class:                  string(class.Name),
		Abstract:               class.Abstract,
		ImplementationSpecific: class.ImplementationSpecific,
		Description:            summaryOf(class.Description),
		Constructor:            dumpConstructor(class.Constructor),
	}
	for _, parent := range class.Inheritances {
		dump.Inheritances = append(dump.Inheritances, string(parent.Name))
	}
	if class.Serialization != nil {
		dump.Serialization = &serializationDump{
			WithModelType: class.Serialization.WithModelType,
		}
	}
	for _, prop := range class.Properties {
		dump.Properties = append(dump.Properties, &propertyDump{
			Name:        string(prop.Name),
			Type:        prop.TypeAnnotation.String(),
			ReadOnly:    prop.ReadOnly,
			Description: summaryOf(prop.Description),
			SpecifiedIn: string(prop.SpecifiedIn),
		})
	}
	for _, method := range class.Methods {
		methodOut := &methodDump{
			Name:                   string(method.Name),
			ImplementationSpecific: method.ImplementationSpecific,
			Arguments:              dumpArguments(method.Arguments),
			Contracts:              dumpContracts(method.Contracts),
			Description:            summaryOf(method.Description),
		}
		if method.Returns != nil {
			methodOut.Returns = method.Returns.String()
		}
		dump.Methods = append(dump.Methods, methodOut)
	}
	for _, invariant := range class.Invariants {
		dump.Invariants = append(dump.Invariants, &invariantDump{
			Description: invariant.Description,
			Body:        exprtree.Dump(invariant.Body),
			SpecifiedIn: string(invariant.SpecifiedIn),
		})
	}
	return dump
}

func dumpConstructor(ctor *Constructor) *constructorDump {
	if ctor == nil {
		return nil
	}
	dump := &constructorDump{
		Arguments:              dumpArguments(ctor.Arguments),
		ImplementationSpecific: ctor.ImplementationSpecific,
		Contracts:              dumpContracts(ctor.Contracts),
	}
	for _, stmt := range ctor.Statements {
		dump.Statements = append(dump.Statements, dumpStatement(stmt))
	}
	return dump
}

func dumpStatement(stmt *construct.AssignArgument) string {
	switch def := stmt.Default.(type) {
	case nil:
		return fmt.Sprintf("%s := %s", stmt.Name, stmt.Argument)
	case *construct.EmptyList:
		return fmt.Sprintf("%s := %s ?? []", stmt.Name, stmt.Argument)
	case *construct.DefaultEnumLiteral:
		return fmt.Sprintf(
			"%s := %s ?? %s.%s",
			stmt.Name, stmt.Argument, def.Enum.Name, def.Literal.Name,
		)
	default:
		panic(fmt.Sprintf("unexpected default %T in the constructor statement", def))
	}
}

func dumpArguments(args []*Argument) []*argumentDump {
	if len(args) == 0 {
		return nil
	}
	out := make([]*argumentDump, len(args))
	for i, arg := range args {
		out[i] = &argumentDump{
			Name:        string(arg.Name),
			Type:        arg.TypeAnnotation.String(),
			NullDefault: arg.HasNullDefault,
		}
	}
	return out
}

func dumpContracts(contracts Contracts) *contractsDump {
	if len(contracts.Preconditions) == 0 &&
		len(contracts.Snapshots) == 0 &&
		len(contracts.Postconditions) == 0 {
		return nil
	}
	dump := &contractsDump{}
	for _, pre := range contracts.Preconditions {
		dump.Preconditions = append(dump.Preconditions, &contractDump{
			Description: pre.Description,
			Body:        exprtree.Dump(pre.Body),
		})
	}
	for _, snap := range contracts.Snapshots {
		dump.Snapshots = append(dump.Snapshots, &snapshotDump{
			Name: string(snap.Name),
			Body: exprtree.Dump(snap.Body),
		})
	}
	for _, post := range contracts.Postconditions {
		dump.Postconditions = append(dump.Postconditions, &contractDump{
			Description: post.Description,
			Body:        exprtree.Dump(post.Body),
		})
	}
	return dump
}

func summaryOf(description *model.Description) string {
	if description == nil {
		return ""
	}
	return description.Summary
}
