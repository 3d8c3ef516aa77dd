package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesPoolResetsLength(t *testing.T) {
	p := NewBytesPool(16, 64)
	b := p.Get()
	assert.Len(t, *b, 0)
	*b = append(*b, 1, 2, 3)
	p.Put(b)

	again := p.Get()
	assert.Len(t, *again, 0)
}

func TestBytesPoolDropsOversized(t *testing.T) {
	p := NewBytesPool(4, 8)
	b := p.Get()
	*b = make([]byte, 0, 128)
	p.Put(b)
	assert.LessOrEqual(t, cap(*p.Get()), 8)
}
