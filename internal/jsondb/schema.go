// Describes a table's record type as JSON Schema.

package jsondb

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of a single record of the table, with
// properties inlined. Collection files hold an array of such records.
func (t *Table[T]) Schema() *jsonschema.Schema {
	rt := reflect.TypeFor[T]()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.ReflectFromType(rt)
	s.ID = jsonschema.ID("urn:jsondb:" + t.id)
	s.Title = t.id
	return s
}
