// Package diag defines the structured error values produced by the
// compiler core. Every error carries a kind from the closed taxonomy, a
// canonical human-readable message, and at least one location id. Rendering
// is kept out of the core packages; they only build values.
package diag

import (
	"fmt"
	"strings"

	"github.com/sunholo/skiff/internal/source"
)

// Phase names the pipeline stage an error was discovered in.
type Phase string

const (
	PhaseParse     Phase = "parse"
	PhaseResolve   Phase = "resolve"
	PhaseTypecheck Phase = "typecheck"
	PhaseLowering  Phase = "lowering"
)

// Kind is the error kind from the compiler taxonomy.
type Kind string

// Lexing/parsing.
const (
	UnsupportedCharacter Kind = "UnsupportedCharacter"
	ParseError           Kind = "ParseError"
)

// Name resolution.
const (
	ModuleConflict                            Kind = "ModuleConflict"
	InternalModuleConflicts                   Kind = "InternalModuleConflicts"
	ImportedModuleNotFound                    Kind = "ImportedModuleNotFound"
	UnknownTypeName                           Kind = "UnknownTypeName"
	UnknownTypeArg                            Kind = "UnknownTypeArg"
	TypeArgumentConflict                      Kind = "TypeArgumentConflict"
	ArgumentConflict                          Kind = "ArgumentConflict"
	LambdaArgumentConflict                    Kind = "LambdaArgumentConflict"
	UnknownFunction                           Kind = "UnknownFunction"
	AmbiguousName                             Kind = "AmbiguousName"
	UnusedTypeArgument                        Kind = "UnusedTypeArgument"
	RecordFieldNotUnique                      Kind = "RecordFieldNotUnique"
	VariantNotUnique                          Kind = "VariantNotUnique"
	ExportNoMatch                             Kind = "ExportNoMatch"
	ImportNoMatch                             Kind = "ImportNoMatch"
	IncorrectTypeArgumentCount                Kind = "IncorrectTypeArgumentCount"
	NameNotType                               Kind = "NameNotType"
	UnusedHiddenItem                          Kind = "UnusedHiddenItem"
	UnknownFieldName                          Kind = "UnknownFieldName"
	NotIrrefutablePattern                     Kind = "NotIrrefutablePattern"
	NotRecordType                             Kind = "NotRecordType"
	NoSuchField                               Kind = "NoSuchField"
	MissingFields                             Kind = "MissingFields"
	FieldsInitializedMultipleTimes            Kind = "FieldsInitializedMultipleTimes"
	NoRecordFoundWithFields                   Kind = "NoRecordFoundWithFields"
	NotAClassName                             Kind = "NotAClassName"
	InvalidArgumentInTypeClassConstraint      Kind = "InvalidArgumentInTypeClassConstraint"
	NotAClassMember                           Kind = "NotAClassMember"
	MissingClassMemberInInstance              Kind = "MissingClassMemberInInstance"
	ClassMemberTypeArgMismatch                Kind = "ClassMemberTypeArgMismatch"
	ExtraConstraintInClassMember              Kind = "ExtraConstraintInClassMember"
	ConflictingDefaultClassMember             Kind = "ConflictingDefaultClassMember"
	ConflictingFunctionTypesInModule          Kind = "ConflictingFunctionTypesInModule"
	DefaultClassMemberWithoutType             Kind = "DefaultClassMemberWithoutType"
	InstanceMemberWithoutImplementation       Kind = "InstanceMemberWithoutImplementation"
	ConflictingInstanceMemberFunction         Kind = "ConflictingInstanceMemberFunction"
	ConflictingFunctionTypesInInstance        Kind = "ConflictingFunctionTypesInInstance"
	FunctionTypeWithoutImplementationInModule Kind = "FunctionTypeWithoutImplementationInModule"
	InvalidClassArgument                      Kind = "InvalidClassArgument"
	InvalidTypeArgInInstanceConstraint        Kind = "InvalidTypeArgInInstanceConstraint"
	NamedInstancedNotUnique                   Kind = "NamedInstancedNotUnique"
)

// Type checking.
const (
	ConflictingInstances            Kind = "ConflictingInstances"
	DeriveFailureNoInstanceFound    Kind = "DeriveFailureNoInstanceFound"
	DeriveFailureInstanceNotGeneric Kind = "DeriveFailureInstanceNotGeneric"
	UntypedExternFunction           Kind = "UntypedExternFunction"
	FunctionArgAndSignatureMismatch Kind = "FunctionArgAndSignatureMismatch"
	MainNotFound                    Kind = "MainNotFound"
	TypeMismatch                    Kind = "TypeMismatch"
	FunctionArgumentMismatch        Kind = "FunctionArgumentMismatch"
	InvalidVariantPattern           Kind = "InvalidVariantPattern"
	InvalidRecordPattern            Kind = "InvalidRecordPattern"
	TypeAnnotationNeeded            Kind = "TypeAnnotationNeeded"
	InvalidFormatString             Kind = "InvalidFormatString"
	CyclicClassDependencies         Kind = "CyclicClassDependencies"
	MissingInstance                 Kind = "MissingInstance"
	RecursiveType                   Kind = "RecursiveType"
	AmbiguousFieldAccess            Kind = "AmbiguousFieldAccess"
)

// Error is one structured compiler error.
type Error struct {
	Phase     Phase
	Kind      Kind
	Msg       string
	Locations []source.LocationID
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an error value with a formatted canonical message.
func New(phase Phase, kind Kind, locs []source.LocationID, format string, args ...interface{}) *Error {
	return &Error{
		Phase:     phase,
		Kind:      kind,
		Msg:       fmt.Sprintf(format, args...),
		Locations: locs,
	}
}

// Bag accumulates the errors of one phase.
type Bag struct {
	errors []*Error
}

// Add appends an error to the bag.
func (b *Bag) Add(err *Error) {
	b.errors = append(b.errors, err)
}

// HasErrors reports whether anything was collected.
func (b *Bag) HasErrors() bool {
	return len(b.errors) > 0
}

// Errors returns the collected errors in insertion order.
func (b *Bag) Errors() []*Error {
	return b.errors
}

// Summary joins the collected error lines, one per error.
func (b *Bag) Summary() string {
	parts := make([]string, len(b.errors))
	for i, e := range b.errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}
