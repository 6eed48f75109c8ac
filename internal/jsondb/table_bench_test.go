package jsondb

import (
	"fmt"
	"testing"
)

// BenchmarkPush shows the linear cost of a single push with respect to the
// collection size.
func BenchmarkPush(b *testing.B) {
	for _, compress := range []bool{false, true} {
		for _, size := range []int{10, 1000, 10000} {
			b.Run(fmt.Sprintf("compress=%t/size=%d", compress, size), func(b *testing.B) {
				s := New(Options{Root: b.TempDir(), Compression: &compress})
				table, err := NewTable[testObj](s, "bench")
				if err != nil {
					b.Fatal(err)
				}
				if err := table.PushBatch(makeObjs(size)); err != nil {
					b.Fatal(err)
				}
				o := testObj{Name: "YoYo"}
				b.ResetTimer()
				for range b.N {
					if err := table.Push(o); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkGetAll(b *testing.B) {
	for _, compress := range []bool{false, true} {
		b.Run(fmt.Sprintf("compress=%t", compress), func(b *testing.B) {
			s := New(Options{Root: b.TempDir(), Compression: &compress})
			table, err := NewTable[testObj](s, "bench")
			if err != nil {
				b.Fatal(err)
			}
			if err := table.PushBatch(makeObjs(1000)); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for range b.N {
				if _, err := table.GetAll(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
