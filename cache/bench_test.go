package cache

import (
	"bytes"
	"context"
	"fmt"
	"testing"
)

func BenchmarkDigestKeyer(b *testing.B) {
	keyer := NewDigestKeyer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		keyer.StorageID("some/document.pdf:png:95:300:true")
	}
}

func BenchmarkDiskStore_Get(b *testing.B) {
	store, err := NewDiskStore(b.TempDir(), DefaultPolicy())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	value := bytes.Repeat([]byte("p"), 4096)
	if err := store.Set(ctx, "bench", value, nil); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := store.Get(ctx, "bench"); !ok {
			b.Fatal("unexpected miss")
		}
	}
}

func BenchmarkDiskStore_Set(b *testing.B) {
	store, err := NewDiskStore(b.TempDir(), DefaultPolicy())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	value := bytes.Repeat([]byte("p"), 4096)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := store.Set(ctx, fmt.Sprintf("bench-%d", i%64), value, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMiddleware_Hit(b *testing.B) {
	store, err := NewDiskStore(b.TempDir(), DefaultPolicy())
	if err != nil {
		b.Fatal(err)
	}
	mw := NewMiddleware(store, nil)
	ctx := context.Background()
	render := func(ctx context.Context) ([]byte, error) {
		return bytes.Repeat([]byte("p"), 4096), nil
	}
	if _, _, err := mw.Do(ctx, "bench", render); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := mw.Do(ctx, "bench", render); err != nil {
			b.Fatal(err)
		}
	}
}
