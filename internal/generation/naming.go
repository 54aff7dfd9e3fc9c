package generation

import (
	"strings"

	"gourho/internal/metadata"
)

// Boundary function names are derived from the qualified native symbol
// alone. They are the only link between the two sides of the boundary, so
// the derivation must be reproducible with no generator-side registry.

// Sanitize rewrites a qualified native symbol into an identifier that is
// legal on both sides of the boundary. Every character outside [A-Za-z0-9]
// becomes an underscore, so "Urho3D::Shape" becomes "Urho3D__Shape".
func Sanitize(symbol string) string {
	var builder strings.Builder
	builder.Grow(len(symbol))
	for _, r := range symbol {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		default:
			builder.WriteByte('_')
		}
	}
	return builder.String()
}

// FunctionName returns the boundary function name for a method or
// constructor overload, the bare sanitized symbol.
func FunctionName(decl metadata.Decl) string {
	return Sanitize(decl.Symbol())
}

// DestructorName returns the boundary destructor thunk name of a class.
// The thunk exists for every class even when the native side declares no
// explicit destructor.
func DestructorName(class *metadata.Class) string {
	return Sanitize(class.Symbol()) + "_destructor"
}

// GetterName returns the boundary getter name of a field.
func GetterName(field *metadata.Field) string {
	return "get_" + Sanitize(field.Symbol())
}

// SetterName returns the boundary setter name of a field.
func SetterName(field *metadata.Field) string {
	return "set_" + Sanitize(field.Symbol())
}

// CallbackSetterName returns the registration function name installing a
// managed override for a native virtual method.
func CallbackSetterName(method *metadata.Method) string {
	return "set_" + method.Owner().Name() + "_fn" + method.Name()
}

// DelegateName returns the callback descriptor type name of a virtual
// method.
func DelegateName(method *metadata.Method) string {
	return method.Owner().Name() + method.Name() + "Delegate"
}

// CacheName returns the identity cache name shared by a class hierarchy.
// Only the hierarchy root declares the cache, subclasses route through it.
func CacheName(class *metadata.Class) string {
	root := class.Root()
	return lowerFirst(root.Name()) + "Cache"
}

// AddRefName and ReleaseRefName are the reference counting entry points of
// the known ref-counted base, present in every ref-counted API.
func AddRefName() string {
	return Sanitize(metadata.RefCountedSymbol + "::AddRef")
}

func ReleaseRefName() string {
	return Sanitize(metadata.RefCountedSymbol + "::ReleaseRef")
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
