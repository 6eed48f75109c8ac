package main

import (
	"github.com/maruel/ksid"
)

// thingID is the stable identity of Thing in the store.
const thingID = "jsondb.Thing"

// Thing is the record type used by the demo and bench commands.
type Thing struct {
	ID        ksid.ID `json:"id" jsonschema:"description=Unique record identifier"`
	Name      string  `json:"name" jsonschema:"description=Display name"`
	Age       int32   `json:"age"`
	Rank      int32   `json:"rank"`
	Something *string `json:"something,omitempty" jsonschema:"description=Optional free text"`
}

func makeThings(n int) []Thing {
	hi := "Hi"
	things := make([]Thing, n)
	for i := range things {
		things[i] = Thing{ID: ksid.NewID(), Name: "YoYo", Age: int32(i), Rank: int32(i), Something: &hi} //nolint:gosec // G115: bounded by n
	}
	return things
}
