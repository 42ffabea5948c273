package value

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kbukum/restorm/errors"
)

// Merge binds every key of src onto dst.
//
// A nested object is merged recursively: a key missing from dst gets a new
// object named Title(key), a key already holding an object is reused. Any
// other value, null and arrays included, replaces whatever dst held.
// A nested object aimed at a key that holds a non-object fails with
// TYPE_MISMATCH; keys merged before the failure stay merged.
func Merge(dst, src *Object) error {
	if dst == nil {
		return errors.TypeMismatch("", "merge target is nil")
	}
	return merge(dst, src, "")
}

func merge(dst, src *Object, prefix string) error {
	var err error
	src.Range(func(key string, v Value) bool {
		path := join(prefix, key)
		nested, ok := v.AsObject()
		if !ok {
			dst.Set(key, v.Clone())
			return true
		}

		target, exists := dst.Get(key)
		var child *Object
		switch {
		case !exists:
			child = NewObject(Title(key))
			dst.Set(key, ObjectValue(child))
		case target.Kind() == KindObject:
			child, _ = target.AsObject()
		default:
			err = errors.TypeMismatch(path, fmt.Sprintf("attribute holds a %s, not an object", target.Kind()))
			return false
		}
		err = merge(child, nested, path)
		return err == nil
	})
	return err
}

// Title returns the container name for key: each run of letters is title
// cased, everything else is kept. "home_address" becomes "Home_Address".
func Title(key string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	b.Grow(len(key))

	start := -1
	for i, r := range key {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(key[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(key[start:]))
	}
	return b.String()
}
