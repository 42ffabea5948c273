package value

import (
	"bytes"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kbukum/restorm/errors"
)

// Decode parses a JSON document into a Value. Numbers keep their literal
// text and object keys are sorted.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Null(), errors.InvalidInput("body", "malformed JSON").WithCause(err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return Null(), errors.InvalidInput("body", "trailing data after JSON document")
	}
	return FromAny(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalJSON implements json.Marshaler. Object keys keep their order.
func (v Value) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	v.writeJSON(&b)
	return []byte(b.String()), nil
}

// MarshalJSON implements json.Marshaler. Keys keep their order.
func (o *Object) MarshalJSON() ([]byte, error) {
	return ObjectValue(o).MarshalJSON()
}

func (v Value) writeJSON(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(v.s)
	case KindString:
		writeString(b, v.s)
	case KindArray:
		b.WriteByte('[')
		for i, it := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			it.writeJSON(b)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		i := 0
		v.obj.Range(func(k string, fv Value) bool {
			if i > 0 {
				b.WriteByte(',')
			}
			i++
			writeString(b, k)
			b.WriteByte(':')
			fv.writeJSON(b)
			return true
		})
		b.WriteByte('}')
	}
}

func writeString(b *strings.Builder, s string) {
	quoted, err := json.Marshal(s)
	if err != nil {
		b.WriteString(`""`)
		return
	}
	b.Write(quoted)
}
