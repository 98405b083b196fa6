package mesh

import "github.com/notargets/pmesh/spectral"

// SnapshotStack saves and restores the complex field so one spectral
// field can serve several transfer chains without recomputation. It
// is owned by a single mesh and holds deep copies; entries are meant
// to live only within one backward-transform invocation.
//
// Every Pop must be matched by a preceding Push. If a transfer chain
// fails between the two, the stack is left unbalanced by design;
// Depth lets callers detect that.
type SnapshotStack[T spectral.Float] struct {
	buf   *spectral.FieldBuffer[T]
	saved [][]T
}

// Push deep-copies the current complex field onto the stack.
func (s *SnapshotStack[T]) Push() {
	s.saved = append(s.saved, s.buf.CopyComplex())
}

// Pop overwrites the complex field with the most recent snapshot.
// Popping an empty stack is a fatal usage error.
func (s *SnapshotStack[T]) Pop() {
	if len(s.saved) == 0 {
		panic("pmesh: Pop on empty snapshot stack")
	}
	top := s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	s.buf.RestoreComplex(top)
}

// Depth returns the number of saved snapshots.
func (s *SnapshotStack[T]) Depth() int { return len(s.saved) }
