package metadata

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// The wire format of the API dump produced by the external native parser.
// The dump is fully resolved: every base class a class names must itself be
// declared in the same dump, before its subclasses.

type apiDump struct {
	Classes []jsonClass `json:"classes"`
}

type jsonClass struct {
	Name         string            `json:"name"`
	Symbol       string            `json:"symbol"`
	Bases        []string          `json:"bases"`
	Fields       []jsonField       `json:"fields"`
	Constructors []jsonConstructor `json:"constructors"`
	Methods      []jsonMethod      `json:"methods"`
}

type jsonField struct {
	Name    string   `json:"name"`
	Symbol  string   `json:"symbol"`
	Type    jsonType `json:"type"`
	Static  bool     `json:"static"`
	Default string   `json:"default"`
}

type jsonConstructor struct {
	Symbol string      `json:"symbol"`
	Params []jsonParam `json:"params"`
}

type jsonMethod struct {
	Name    string      `json:"name"`
	Symbol  string      `json:"symbol"`
	Params  []jsonParam `json:"params"`
	Return  jsonType    `json:"return"`
	Virtual bool        `json:"virtual"`
}

type jsonParam struct {
	Name string   `json:"name"`
	Type jsonType `json:"type"`
}

type jsonType struct {
	Name      string `json:"name"`
	Pointer   bool   `json:"pointer"`
	Reference bool   `json:"reference"`
	BuiltIn   bool   `json:"builtin"`
}

// LoadAPI reads an API dump file and links it into a declaration forest.
func LoadAPI(path string) ([]Decl, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read API dump: %w", err)
	}

	var dump apiDump
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("could not parse API dump: %w", err)
	}

	tree, err := linkAPI(dump)
	if err != nil {
		return nil, err
	}

	Logger().Debug("loaded API dump",
		zap.String("path", path),
		zap.Int("classes", len(tree)))
	return tree, nil
}

func linkAPI(dump apiDump) ([]Decl, error) {
	bySymbol := make(map[string]*Class, len(dump.Classes))
	tree := make([]Decl, 0, len(dump.Classes))

	for _, jc := range dump.Classes {
		bases := make([]*Class, 0, len(jc.Bases))
		for _, baseSymbol := range jc.Bases {
			base, found := bySymbol[baseSymbol]
			if !found {
				return nil, fmt.Errorf("class '%s' names unresolved base '%s'", jc.Symbol, baseSymbol)
			}
			bases = append(bases, base)
		}

		class := NewClass(jc.Name, jc.Symbol, bases...)
		for _, jf := range jc.Fields {
			symbol := jf.Symbol
			if symbol == "" {
				symbol = jc.Symbol + "::" + jf.Name
			}
			class.Add(NewField(jf.Name, symbol, typeDesc(jf.Type), jf.Static, jf.Default))
		}
		for _, jct := range jc.Constructors {
			symbol := jct.Symbol
			if symbol == "" {
				symbol = jc.Symbol + "::" + jc.Name
			}
			class.Add(NewConstructor(jc.Name, symbol, params(jct.Params)))
		}
		for _, jm := range jc.Methods {
			symbol := jm.Symbol
			if symbol == "" {
				symbol = jc.Symbol + "::" + jm.Name
			}
			class.Add(NewMethod(jm.Name, symbol, params(jm.Params), typeDesc(jm.Return), jm.Virtual))
		}

		bySymbol[jc.Symbol] = class
		tree = append(tree, class)
	}

	return tree, nil
}

func params(in []jsonParam) []Param {
	out := make([]Param, 0, len(in))
	for _, p := range in {
		out = append(out, Param{Name: p.Name, Type: typeDesc(p.Type)})
	}
	return out
}

func typeDesc(t jsonType) TypeDesc {
	return TypeDesc{
		Name:        t.Name,
		IsPointer:   t.Pointer,
		IsReference: t.Reference,
		IsBuiltIn:   t.BuiltIn,
	}
}
