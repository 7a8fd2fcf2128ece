package recordstore

import (
	"reflect"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap/zapcore"
)

// Names bound by the repository itself. A filter may not reuse any of them,
// compared case-insensitively.
const (
	paramID             = "id"
	paramType           = "type"
	paramTenantID       = "tenantId"
	paramIncludeDeleted = "includeDeleted"
	paramPageSize       = "pageSize"
	paramOffset         = "offset"
)

var reservedParams = []string{
	paramID, paramType, paramTenantID, paramIncludeDeleted, paramPageSize, paramOffset,
}

// Params is an ordered bag of named query parameters. Names are referenced
// in SQL text as :name.
type Params struct {
	names  []string
	values map[string]any
}

// NewParams builds a bag from a map. Names are sorted so the bag, and
// anything logged from it, is deterministic.
func NewParams(kv map[string]any) Params {
	var p Params
	names := make([]string, 0, len(kv))
	for k := range kv {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		p.Set(k, kv[k])
	}
	return p
}

// Set binds name to v, replacing an earlier value of the same name.
func (p *Params) Set(name string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = v
}

func (p Params) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p Params) Names() []string {
	return append([]string(nil), p.names...)
}

func (p Params) Len() int {
	return len(p.names)
}

// Map returns the bag in the shape sqlx binds named queries from.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p.values))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

func (p Params) clone() Params {
	var out Params
	for _, n := range p.names {
		out.Set(n, p.values[n])
	}
	return out
}

func (p Params) lookupFold(name string) (string, bool) {
	for _, n := range p.names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// Merge returns a new bag holding p followed by other. It fails with a
// *MergeConflictError instead of overwriting when a name of other is
// reserved or already bound in p.
func (p Params) Merge(other Params) (Params, error) {
	out := p.clone()
	for _, name := range other.names {
		if isReservedParam(name) {
			return Params{}, &MergeConflictError{Name: name}
		}
		if _, ok := out.lookupFold(name); ok {
			return Params{}, &MergeConflictError{Name: name}
		}
		out.Set(name, other.values[name])
	}
	return out, nil
}

func isReservedParam(name string) bool {
	for _, r := range reservedParams {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

// MarshalLogObject writes the bag for debug logs. A serialized document
// bound as :data is logged by length only.
func (p Params) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, n := range p.names {
		if doc, ok := p.values[n].(string); ok && n == paramData {
			enc.AddInt(n+"_bytes", len(doc))
			continue
		}
		if err := enc.AddReflected(n, p.values[n]); err != nil {
			return err
		}
	}
	return nil
}

// Filter narrows a listing with a caller written predicate over the
// document column, e.g. data->>'make' = :make. Every :word in Query is read
// as a parameter, even inside a quoted literal, so literal values containing
// a colon must be bound as parameters or written with a doubled colon.
type Filter struct {
	Query  string
	Params Params
}

func NewFilter(query string, params map[string]any) *Filter {
	return &Filter{Query: query, Params: NewParams(params)}
}

// FilterFrom builds a Filter whose parameters come from a map or from the
// exported fields of a struct. A field is named by its db tag, or else by
// its lower camel case name, so struct{ Make string } binds :make.
func FilterFrom(query string, params any) (*Filter, error) {
	if params == nil {
		return &Filter{Query: query}, nil
	}

	if m, ok := params.(map[string]any); ok {
		return NewFilter(query, m), nil
	}

	val := reflect.ValueOf(params)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return &Filter{Query: query}, nil
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, invalidArgument("filter", "parameters must be a struct or map[string]any, got %s", val.Kind())
	}

	var p Params
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := strcase.ToLowerCamel(field.Name)
		if tag, ok := field.Tag.Lookup("db"); ok {
			tag = strings.TrimSpace(strings.Split(tag, ",")[0])
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		if _, dup := p.lookupFold(name); dup {
			return nil, &MergeConflictError{Name: name}
		}
		p.Set(name, val.Field(i).Interface())
	}

	return &Filter{Query: query, Params: p}, nil
}

func (f *Filter) validate() error {
	if strings.TrimSpace(f.Query) == "" {
		return invalidArgument("filter", "query is empty")
	}
	for _, n := range f.Params.names {
		if !validIdentifier.MatchString(n) {
			return invalidArgument("filter", "parameter name %q is not a valid identifier", n)
		}
	}
	if at := quotedPlaceholder(f.Query); at >= 0 {
		return invalidArgument("filter", "placeholder inside a quoted literal at offset %d; bind the value as a parameter", at)
	}
	return nil
}

// quotedPlaceholder returns the offset of the first :name found inside a
// single quoted literal, or -1.
func quotedPlaceholder(q string) int {
	quoted := false
	for i := 0; i < len(q); i++ {
		switch c := q[i]; {
		case c == '\'':
			quoted = !quoted
		case c == ':' && i+1 < len(q) && q[i+1] == ':':
			i++
		case c == ':' && quoted && i+1 < len(q) && isNameByte(q[i+1]):
			return i
		}
	}
	return -1
}

func isNameByte(c byte) bool {
	return c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
