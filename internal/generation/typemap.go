package generation

import (
	"fmt"

	"gourho/internal/metadata"
)

// Directive is the rule for converting a value's representation when it
// crosses the boundary.
type Directive int

const (
	// ByValue copies the value across the boundary.
	ByValue Directive = iota
	// ByReference passes an opaque handle to the native object.
	ByReference
	// Textual copies native string data by value at the boundary.
	Textual
)

// TypeMapper decides, per native type, its boundary representation and
// marshaling directive. Both operations are pure functions of the type
// descriptor. Unresolvable types surface as errors, the generator does not
// attempt recovery.
type TypeMapper interface {
	ParamRepresentation(t metadata.TypeDesc) (string, error)
	ReturnRepresentation(t metadata.TypeDesc, virtualContext bool) (string, error)
	DirectiveFor(t metadata.TypeDesc) Directive
}

// The map of basic native types to boundary representations
var builtInTypes map[string]string = map[string]string{
	"bool":               "bool",
	"char":               "int8",
	"signed char":        "int8",
	"unsigned char":      "uint8",
	"short":              "int16",
	"unsigned short":     "uint16",
	"int":                "int32",
	"unsigned":           "uint32",
	"unsigned int":       "uint32",
	"long long":          "int64",
	"unsigned long long": "uint64",
	"float":              "float32",
	"double":             "float64",
	"void":               "",
	// Sized names pass through unchanged so metadata-described APIs and
	// native ones share one table.
	"int8":    "int8",
	"int16":   "int16",
	"int32":   "int32",
	"int64":   "int64",
	"uint8":   "uint8",
	"uint16":  "uint16",
	"uint32":  "uint32",
	"uint64":  "uint64",
	"float32": "float32",
	"float64": "float64",
}

// The set of native types marshaled as text
var textualTypes map[string]bool = map[string]bool{
	"string":         true,
	"char*":          true,
	"const char*":    true,
	"Urho3D::String": true,
}

// DefaultTypeMapper is the builtin marshal policy: textual types map to
// strings, basic types to their sized representations and everything else
// to an opaque native handle.
type DefaultTypeMapper struct{}

func (DefaultTypeMapper) ParamRepresentation(t metadata.TypeDesc) (string, error) {
	return represent(t)
}

func (DefaultTypeMapper) ReturnRepresentation(t metadata.TypeDesc, virtualContext bool) (string, error) {
	// The default policy represents returns the same way in and out of
	// virtual context. The argument stays part of the contract so a
	// policy can diverge for callback-visible returns.
	return represent(t)
}

func (DefaultTypeMapper) DirectiveFor(t metadata.TypeDesc) Directive {
	if textualTypes[t.Name] {
		return Textual
	}
	if t.IsPointer || t.IsReference || !isBasic(t) {
		return ByReference
	}
	return ByValue
}

func represent(t metadata.TypeDesc) (string, error) {
	if textualTypes[t.Name] {
		return "string", nil
	}
	// Pointers and references cross the boundary as opaque handles.
	if t.IsPointer || t.IsReference {
		return "uintptr", nil
	}
	if basic, found := builtInTypes[t.Name]; found {
		return basic, nil
	}
	// Class values cross as handles too, the native side owns the layout.
	if !t.IsBuiltIn {
		return "uintptr", nil
	}
	return "", fmt.Errorf("native type '%s' has no boundary representation", t.Name)
}

func isBasic(t metadata.TypeDesc) bool {
	_, found := builtInTypes[t.Name]
	return found
}
