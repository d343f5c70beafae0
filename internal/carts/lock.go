package carts

import (
	"github.com/cespare/xxhash/v2"
	"sync"
)

const lockStripes = 64

// stripes: satu mutex per bucket hash(cartID), cukup untuk serialisasi
// akses ke cart yang sama tanpa map yang tumbuh terus.
type stripes [lockStripes]sync.Mutex

func (s *stripes) lock(cartID string) func() {
	m := &s[xxhash.Sum64String(cartID)%lockStripes]
	m.Lock()
	return m.Unlock
}
