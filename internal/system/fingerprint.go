package system

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"lukechampine.com/blake3"
)

// Fingerprint returns a BLAKE3 digest of the system's structure: radii,
// orbit parameters, moon lists and feature kinds. Orbit angles, positions
// and station stock change every tick and are left out, so a system keeps
// its fingerprint for its whole run. Two runs with the same seed and build
// produce the same fingerprint.
func Fingerprint(s *System) string {
	h := blake3.New(32, nil)
	var buf [8]byte
	putF := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	putI := func(i int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h.Write(buf[:])
	}

	putI(s.Len())
	for i := range s.Bodies {
		b := &s.Bodies[i]
		putF(b.Radius)
		if o := b.Orbit; o != nil {
			putI(o.Parent)
			putF(o.Distance)
			putF(o.Speed)
			putI(int(o.Direction))
		} else {
			putI(-1)
		}
		putI(int(b.Feature.Kind))
		putI(len(b.Moons))
		for _, m := range b.Moons {
			putI(m)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
