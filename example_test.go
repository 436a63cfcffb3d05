package fontcache_test

import (
	"fmt"

	"github.com/unkn0wn-root/fontcache"
)

func ExampleFontCache_Get() {
	cache := fontcache.New[int](2)
	font := fontcache.NewFontRef([]byte("font data"), 0)
	glyphCount := func(f fontcache.FontRef) int {
		fmt.Println("parsing")
		return len(f.Data())
	}

	_, n := cache.Get(font, glyphCount)
	fmt.Println(*n)
	_, n = cache.Get(font, glyphCount)
	fmt.Println(*n, cache.Stats().Hits)
	// Output:
	// parsing
	// 9
	// 9 1
}
