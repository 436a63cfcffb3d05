package fontcache

// FontRef is a lightweight reference to a font held in memory.
// Copies of a FontRef share the same key and are treated as the same font
// by FontCache. Build one with NewFontRef; the zero FontRef carries the
// unset key.
type FontRef struct {
	data   []byte
	offset uint32 // table directory offset; non-zero inside collections
	key    CacheKey
}

// NewFontRef wraps font data and assigns it a new CacheKey.
// data is not copied and must not be modified while the ref is in use.
func NewFontRef(data []byte, offset uint32) FontRef {
	return FontRef{data: data, offset: offset, key: NewCacheKey()}
}

func (f FontRef) Data() []byte   { return f.data }
func (f FontRef) Offset() uint32 { return f.offset }
func (f FontRef) Key() CacheKey  { return f.key }
