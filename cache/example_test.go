package cache_test

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/docmill/cache"
)

func ExampleNewDiskStore() {
	dir, _ := os.MkdirTemp("", "docmill-cache")
	defer os.RemoveAll(dir)

	store, err := cache.NewDiskStore(dir, cache.DefaultPolicy())
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	ctx := context.Background()

	// Store a rendered artifact
	_ = store.Set(ctx, "report.pdf:png:95:300:true", []byte("page bytes"), nil)

	// Retrieve it
	value, ok := store.Get(ctx, "report.pdf:png:95:300:true")
	if ok {
		fmt.Println("Value:", string(value))
	}
	// Output:
	// Value: page bytes
}

func ExampleDiskStore_Get() {
	dir, _ := os.MkdirTemp("", "docmill-cache")
	defer os.RemoveAll(dir)

	store, _ := cache.NewDiskStore(dir, cache.DefaultPolicy())
	ctx := context.Background()

	// Miss - key doesn't exist
	_, ok := store.Get(ctx, "missing")
	fmt.Println("Missing key found:", ok)

	// Set and get
	_ = store.Set(ctx, "exists", []byte("data"), nil)
	value, ok := store.Get(ctx, "exists")
	fmt.Println("Existing key found:", ok)
	fmt.Println("Value:", string(value))
	// Output:
	// Missing key found: false
	// Existing key found: true
	// Value: data
}

func ExampleMiddleware_Do() {
	dir, _ := os.MkdirTemp("", "docmill-cache")
	defer os.RemoveAll(dir)

	store, _ := cache.NewDiskStore(dir, cache.DefaultPolicy())
	mw := cache.NewMiddleware(store, nil)
	ctx := context.Background()

	render := func(ctx context.Context) ([]byte, error) {
		fmt.Println("rendering")
		return []byte("artifact"), nil
	}

	// First call renders and caches
	_, hit, _ := mw.Do(ctx, "doc.pdf:png:95:300:true", render)
	fmt.Println("Hit:", hit)

	// Second call is served from the cache
	value, hit, _ := mw.Do(ctx, "doc.pdf:png:95:300:true", render)
	fmt.Println("Hit:", hit)
	fmt.Println("Value:", string(value))
	// Output:
	// rendering
	// Hit: false
	// Hit: true
	// Value: artifact
}
