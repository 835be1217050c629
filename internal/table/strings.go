package table

import "github.com/xirelogy/go-qi/internal/value"

// Strings is the string intern pool: it guarantees that for any content s,
// Intern(s) always returns the same *value.String pointer, so that
// value.Equal reduces string comparison to identity.
type Strings struct {
	t *Table[*value.String]
}

// NewStrings creates an empty intern pool.
func NewStrings() *Strings {
	return &Strings{t: New[*value.String]()}
}

// Intern returns the canonical *value.String for s, allocating one on
// first sight of this content.
func (p *Strings) Intern(s string) *value.String {
	if existing, ok := p.t.Get(s); ok {
		return existing
	}
	str := &value.String{Chars: s, Hash: value.HashString(s)}
	p.t.Set(s, str)
	return str
}

// Get looks up an already-interned string by content without creating one.
func (p *Strings) Get(s string) (*value.String, bool) {
	return p.t.Get(s)
}

// Sweep removes pool entries whose interned string was not marked by the
// collector's mark phase, letting unreferenced strings be freed.
func (p *Strings) Sweep() {
	p.t.DeleteWhere(func(_ string, v *value.String) bool {
		return !v.Marked()
	})
}

// Each visits every interned string, used by the collector to blacken the
// pool's own roots is unnecessary (the pool holds weak references), but is
// exposed for diagnostics and tests.
func (p *Strings) Each(fn func(s *value.String)) {
	p.t.Each(func(_ string, v *value.String) { fn(v) })
}

// Len reports the number of distinct interned strings.
func (p *Strings) Len() int { return p.t.Len() }
