package term

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Variant keys of the serialized form. Each term is a single-key object
// whose key names the variant:
//
//	{"apply": {"function": {"lambda": {"body": {"variable": 0}}}, "argument": {"reference": "id"}}}
const (
	KeyVariable   = "variable"
	KeyLambda     = "lambda"
	KeyApply      = "apply"
	KeyPut        = "put"
	KeyDuplicate  = "duplicate"
	KeyReference  = "reference"
	KeyUniverse   = "universe"
	KeyFunction   = "function"
	KeyAnnotation = "annotation"
	KeyWrap       = "wrap"
)

// DecodeError reports a malformed serialized term.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode term: %s", e.Message)
	}
	return fmt.Sprintf("decode term at %s: %s", e.Path, e.Message)
}

// ToValue converts t to its generic map form (maps, strings, ints, bools).
func ToValue(t Term) map[string]any {
	switch t := t.(type) {
	case Variable:
		return map[string]any{KeyVariable: int64(t.Index)}
	case Lambda:
		return map[string]any{KeyLambda: map[string]any{
			"body":   ToValue(t.Body),
			"erased": t.Erased,
		}}
	case Apply:
		return map[string]any{KeyApply: map[string]any{
			"function": ToValue(t.Function),
			"argument": ToValue(t.Argument),
			"erased":   t.Erased,
		}}
	case Put:
		return map[string]any{KeyPut: ToValue(t.Term)}
	case Duplicate:
		return map[string]any{KeyDuplicate: map[string]any{
			"expression": ToValue(t.Expression),
			"body":       ToValue(t.Body),
		}}
	case Reference:
		return map[string]any{KeyReference: t.Name}
	case Universe:
		return map[string]any{KeyUniverse: map[string]any{}}
	case Function:
		return map[string]any{KeyFunction: map[string]any{
			"argument_type": ToValue(t.ArgumentType),
			"return_type":   ToValue(t.ReturnType),
			"erased":        t.Erased,
		}}
	case Annotation:
		return map[string]any{KeyAnnotation: map[string]any{
			"checked":    t.Checked,
			"expression": ToValue(t.Expression),
			"type":       ToValue(t.Type),
		}}
	case Wrap:
		return map[string]any{KeyWrap: ToValue(t.Term)}
	default:
		return nil
	}
}

// Marshal encodes t as JSON.
func Marshal(t Term) ([]byte, error) {
	v := ToValue(t)
	if v == nil {
		return nil, fmt.Errorf("marshal term: unsupported term %T", t)
	}
	return json.Marshal(v)
}

// Unmarshal decodes a JSON-encoded term.
func Unmarshal(data []byte) (Term, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	return FromValue(v)
}

// FromValue decodes a term from its generic map form, as produced by
// encoding/json, gopkg.in/yaml.v3 or a CUE value decoded into any.
func FromValue(v any) (Term, error) {
	return fromValue(v, "$")
}

func fromValue(v any, path string) (Term, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected single-key object, got %T", v)}
	}
	if len(obj) != 1 {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected exactly one variant key, got %d", len(obj))}
	}

	for key, body := range obj {
		at := path + "." + key
		switch key {
		case KeyVariable:
			n, err := asIndex(body, at)
			if err != nil {
				return nil, err
			}
			return Variable{Index: n}, nil
		case KeyLambda:
			fields, err := fieldsOf(body, at)
			if err != nil {
				return nil, err
			}
			inner, err := child(fields, "body", at)
			if err != nil {
				return nil, err
			}
			erased, err := flag(fields, "erased", at)
			if err != nil {
				return nil, err
			}
			return Lambda{Body: inner, Erased: erased}, nil
		case KeyApply:
			fields, err := fieldsOf(body, at)
			if err != nil {
				return nil, err
			}
			function, err := child(fields, "function", at)
			if err != nil {
				return nil, err
			}
			argument, err := child(fields, "argument", at)
			if err != nil {
				return nil, err
			}
			erased, err := flag(fields, "erased", at)
			if err != nil {
				return nil, err
			}
			return Apply{Function: function, Argument: argument, Erased: erased}, nil
		case KeyPut:
			inner, err := fromValue(body, at)
			if err != nil {
				return nil, err
			}
			return Put{Term: inner}, nil
		case KeyDuplicate:
			fields, err := fieldsOf(body, at)
			if err != nil {
				return nil, err
			}
			expression, err := child(fields, "expression", at)
			if err != nil {
				return nil, err
			}
			inner, err := child(fields, "body", at)
			if err != nil {
				return nil, err
			}
			return Duplicate{Expression: expression, Body: inner}, nil
		case KeyReference:
			name, ok := body.(string)
			if !ok {
				return nil, &DecodeError{Path: at, Message: fmt.Sprintf("expected string name, got %T", body)}
			}
			return Reference{Name: name}, nil
		case KeyUniverse:
			return Universe{}, nil
		case KeyFunction:
			fields, err := fieldsOf(body, at)
			if err != nil {
				return nil, err
			}
			argumentType, err := child(fields, "argument_type", at)
			if err != nil {
				return nil, err
			}
			returnType, err := child(fields, "return_type", at)
			if err != nil {
				return nil, err
			}
			erased, err := flag(fields, "erased", at)
			if err != nil {
				return nil, err
			}
			return Function{ArgumentType: argumentType, ReturnType: returnType, Erased: erased}, nil
		case KeyAnnotation:
			fields, err := fieldsOf(body, at)
			if err != nil {
				return nil, err
			}
			expression, err := child(fields, "expression", at)
			if err != nil {
				return nil, err
			}
			ty, err := child(fields, "type", at)
			if err != nil {
				return nil, err
			}
			checked, err := flag(fields, "checked", at)
			if err != nil {
				return nil, err
			}
			return Annotation{Checked: checked, Expression: expression, Type: ty}, nil
		case KeyWrap:
			inner, err := fromValue(body, at)
			if err != nil {
				return nil, err
			}
			return Wrap{Term: inner}, nil
		default:
			return nil, &DecodeError{Path: path, Message: fmt.Sprintf("unknown variant %q", key)}
		}
	}
	panic("unreachable")
}

func asObject(v any) (map[string]any, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		obj := make(map[string]any, len(v))
		for k, val := range v {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			obj[s] = val
		}
		return obj, true
	default:
		return nil, false
	}
}

func fieldsOf(v any, path string) (map[string]any, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected object, got %T", v)}
	}
	return obj, nil
}

func child(fields map[string]any, name, path string) (Term, error) {
	v, ok := fields[name]
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("missing field %q", name)}
	}
	return fromValue(v, path+"."+name)
}

func flag(fields map[string]any, name, path string) (bool, error) {
	v, ok := fields[name]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &DecodeError{Path: path + "." + name, Message: fmt.Sprintf("expected bool, got %T", v)}
	}
	return b, nil
}

func asIndex(v any, path string) (Index, error) {
	var n int64
	switch v := v.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > math.MaxInt64 {
			return 0, &DecodeError{Path: path, Message: "index out of range"}
		}
		n = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, &DecodeError{Path: path, Message: fmt.Sprintf("index must be an integer, got %v", v)}
		}
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, &DecodeError{Path: path, Message: fmt.Sprintf("index must be an integer: %v", err)}
		}
		n = i
	default:
		return 0, &DecodeError{Path: path, Message: fmt.Sprintf("expected integer index, got %T", v)}
	}
	if n < 0 {
		return 0, &DecodeError{Path: path, Message: fmt.Sprintf("index must be non-negative, got %d", n)}
	}
	return Index(n), nil
}
