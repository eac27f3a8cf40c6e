package firestore

import (
	"testing"
	"time"
)

// Replay order comes from the seq field, so sequence numbers must be
// strictly increasing even when the clock stands still.
func TestNextSeqStrictlyIncreasing(t *testing.T) {
	frozen := time.Now()
	s := &Store{now: func() time.Time { return frozen }}

	prev := s.nextSeq()
	for i := 0; i < 100; i++ {
		seq := s.nextSeq()
		if seq <= prev {
			t.Fatalf("sequence went backwards: %d after %d", seq, prev)
		}
		prev = seq
	}
}
