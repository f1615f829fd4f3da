package heap

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestProperty_RandomSequences drives alloc/free/realloc/calloc with a fixed
// seed and checks structure and payload integrity after every call.
func TestProperty_RandomSequences(t *testing.T) {
	const arena = 16 * 1024

	for _, seed := range []uint64{1, 7, 42, 1337} {
		h := newTestHeap(t, arena)
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

		type live struct {
			size uint32
			tag  byte
		}
		owned := map[Addr]live{}

		stamp := func(p Addr, l live) {
			b, err := h.Bytes(p, l.size)
			require.NoError(t, err)
			for i := range b {
				b[i] = l.tag
			}
		}
		check := func() {
			for p, l := range owned {
				b, err := h.Bytes(p, l.size)
				require.NoError(t, err)
				for i := range b {
					require.Equal(t, l.tag, b[i], "seed %d: payload at 0x%08X clobbered", seed, p)
				}
			}
		}
		pick := func() Addr {
			for p := range owned {
				return p
			}
			return Nil
		}

		for step := range 2000 {
			tag := byte(step)
			switch op := rng.IntN(10); {
			case op < 5:
				size := uint32(rng.IntN(512) + 1)
				p, _, err := h.Alloc(size)
				if err != nil {
					require.ErrorIs(t, err, ErrNoSpace)
					break
				}
				_, dup := owned[p]
				require.False(t, dup, "seed %d: address 0x%08X handed out twice", seed, p)
				owned[p] = live{size, tag}
				stamp(p, owned[p])
			case op < 8:
				p := pick()
				if p == Nil {
					break
				}
				require.NoError(t, h.Free(p))
				delete(owned, p)
			case op < 9:
				p := pick()
				if p == Nil {
					break
				}
				old := owned[p]
				size := uint32(rng.IntN(768) + 1)
				q, err := h.Realloc(p, size)
				if err != nil {
					require.ErrorIs(t, err, ErrNoSpace)
					break
				}
				delete(owned, p)
				keep := min(old.size, size)
				b, err := h.Bytes(q, keep)
				require.NoError(t, err)
				for i := range b {
					require.Equal(t, old.tag, b[i], "seed %d: realloc lost data", seed)
				}
				owned[q] = live{size, tag}
				stamp(q, owned[q])
			default:
				n := uint32(rng.IntN(32) + 1)
				p, err := h.Calloc(n, 4)
				if err != nil {
					require.ErrorIs(t, err, ErrNoSpace)
					break
				}
				b, err := h.Bytes(p, n*4)
				require.NoError(t, err)
				require.Equal(t, make([]byte, n*4), b)
				owned[p] = live{n * 4, tag}
				stamp(p, owned[p])
			}

			assertInvariants(t, h)
		}
		check()

		for p := range owned {
			require.NoError(t, h.Free(p))
		}
		require.Equal(t, []shape{{arena, false}}, layout(h), "seed %d: arena must collapse to one block", seed)
	}
}
