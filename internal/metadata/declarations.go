// The package used for describing and loading the native API declaration tree.
package metadata

// The symbol of the base class that makes a hierarchy reference-counted.
const RefCountedSymbol = "Urho3D::RefCounted"

// Kind discriminates the closed set of declaration variants.
// The zero Kind is not a valid kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindClass
	KindField
	KindConstructor
	KindMethod
)

// TypeDesc describes a native type as seen by the parser.
type TypeDesc struct {
	Name        string
	IsPointer   bool
	IsReference bool
	IsBuiltIn   bool
}

// Decl is a single node of the declaration tree. The variant set is closed:
// Class, Field, Constructor and Method are the only implementations.
type Decl interface {
	Kind() Kind
	Name() string
	// Symbol returns the globally unique qualified native symbol.
	Symbol() string
	// Owner returns the enclosing class. This is a navigation edge,
	// never an ownership edge.
	Owner() *Class

	setOwner(*Class)
}

type declBase struct {
	name   string
	symbol string
	owner  *Class
}

func (b *declBase) Name() string      { return b.name }
func (b *declBase) Symbol() string    { return b.symbol }
func (b *declBase) Owner() *Class     { return b.owner }
func (b *declBase) setOwner(c *Class) { b.owner = c }

// Class is a container declaration with an ordered base list and members.
type Class struct {
	declBase
	bases   []*Class
	members []Decl
}

func NewClass(name, symbol string, bases ...*Class) *Class {
	return &Class{
		declBase: declBase{name: name, symbol: symbol},
		bases:    bases,
	}
}

func (c *Class) Kind() Kind { return KindClass }

func (c *Class) Bases() []*Class { return c.bases }

func (c *Class) Members() []Decl { return c.members }

// Add appends members in document order and links their owner back-reference.
func (c *Class) Add(members ...Decl) *Class {
	for _, m := range members {
		m.setOwner(c)
	}
	c.members = append(c.members, members...)
	return c
}

// IsSubclassOf walks the base chains looking for the given native symbol.
func (c *Class) IsSubclassOf(symbol string) bool {
	for _, base := range c.bases {
		if base.symbol == symbol || base.IsSubclassOf(symbol) {
			return true
		}
	}
	return false
}

// Root returns the topmost class of the primary base chain. The root owns
// the shared instance handle, disposed counter and identity cache for the
// whole hierarchy.
func (c *Class) Root() *Class {
	if len(c.bases) == 0 {
		return c
	}
	return c.bases[0].Root()
}

// IsRefCounted reports whether disposal should release a native reference
// instead of invoking the destructor thunk directly.
func (c *Class) IsRefCounted() bool {
	return c.symbol == RefCountedSymbol || c.IsSubclassOf(RefCountedSymbol)
}

// Field is a member variable declaration.
type Field struct {
	declBase
	typ          TypeDesc
	isStatic     bool
	defaultValue string
}

func NewField(name, symbol string, typ TypeDesc, isStatic bool, defaultValue string) *Field {
	return &Field{
		declBase:     declBase{name: name, symbol: symbol},
		typ:          typ,
		isStatic:     isStatic,
		defaultValue: defaultValue,
	}
}

func (f *Field) Kind() Kind           { return KindField }
func (f *Field) Type() TypeDesc       { return f.typ }
func (f *Field) IsStatic() bool       { return f.isStatic }
func (f *Field) DefaultValue() string { return f.defaultValue }

// Param is a single {type, name} entry of a parameter list.
type Param struct {
	Name string
	Type TypeDesc
}

// Constructor is one constructor overload of a class.
type Constructor struct {
	declBase
	params []Param
}

func NewConstructor(name, symbol string, params []Param) *Constructor {
	return &Constructor{
		declBase: declBase{name: name, symbol: symbol},
		params:   params,
	}
}

func (c *Constructor) Kind() Kind      { return KindConstructor }
func (c *Constructor) Params() []Param { return c.params }

// Method is a member function declaration.
type Method struct {
	declBase
	params    []Param
	ret       TypeDesc
	isVirtual bool
}

func NewMethod(name, symbol string, params []Param, ret TypeDesc, isVirtual bool) *Method {
	return &Method{
		declBase:  declBase{name: name, symbol: symbol},
		params:    params,
		ret:       ret,
		isVirtual: isVirtual,
	}
}

func (m *Method) Kind() Kind           { return KindMethod }
func (m *Method) Params() []Param      { return m.params }
func (m *Method) ReturnType() TypeDesc { return m.ret }
func (m *Method) IsVirtual() bool      { return m.isVirtual }
