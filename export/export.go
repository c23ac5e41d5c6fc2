// Package export turns decoded instances into plain trees and serializes
// them as JSON or CBOR.
package export

import (
	"bytes"
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"github.com/i64/duckparse/errors"
	"github.com/i64/duckparse/parse"
)

// Pair is one decoded field.
type Pair struct {
	Value any
	Key   string
}

// Object is an instance with its fields in declaration order.
type Object []Pair

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, p := range o {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the fields in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Tree converts inst into plain values: nested instances become Objects,
// lists become []any and enum members become their names. Other values
// are passed through unchanged.
func Tree(inst *parse.Instance) Object {
	if inst == nil {
		return Object{}
	}
	obj := make(Object, 0, inst.Len())
	for name, v := range inst.All() {
		obj = append(obj, Pair{Key: name, Value: plain(v)})
	}
	return obj
}

func plain(v any) any {
	switch x := v.(type) {
	case *parse.Instance:
		return Tree(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case parse.EnumValue:
		return x.Name
	}
	return v
}

// JSON encodes inst as a JSON object in declaration order. Byte slices are
// base64 strings.
func JSON(inst *parse.Instance) ([]byte, error) {
	out, err := json.Marshal(Tree(inst))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "encode json")
	}
	return out, nil
}

var cborMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// CBOR encodes inst with core deterministic encoding. Instances are maps
// with sorted keys and byte slices are byte strings.
func CBOR(inst *parse.Instance) ([]byte, error) {
	out, err := cborMode.Marshal(cborValue(Tree(inst)))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "encode cbor")
	}
	return out, nil
}

func cborValue(v any) any {
	switch x := v.(type) {
	case Object:
		m := make(map[string]any, len(x))
		for _, p := range x {
			m[p.Key] = cborValue(p.Value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cborValue(e)
		}
		return out
	}
	return v
}
