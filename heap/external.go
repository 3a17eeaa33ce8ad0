package heap

// ExternalTable registers caller-owned payload buffers referenced by
// external byte arrays and strings. The block-resident header of an
// external object stores a table id instead of a raw pointer; the
// registered slice aliases the caller's memory and is never copied.
//
// The table is append-only and owned by the heap until migration hands it
// to the permanent store together with the blocks.
type ExternalTable struct {
	bufs [][]byte
}

// Register records mem and returns its id. Registration never copies; the
// table and the caller share the same backing array.
func (t *ExternalTable) Register(mem []byte) uint32 {
	t.bufs = append(t.bufs, mem)
	return uint32(len(t.bufs) - 1)
}

// Bytes returns the buffer registered under id.
func (t *ExternalTable) Bytes(id uint32) ([]byte, bool) {
	if int(id) >= len(t.bufs) {
		return nil, false
	}
	return t.bufs[id], true
}

// Len returns the number of registered buffers.
func (t *ExternalTable) Len() int {
	return len(t.bufs)
}

// Take transfers every registered buffer from src to t, leaving src empty.
// The destination must be empty so ids keep their meaning.
func (t *ExternalTable) Take(src *ExternalTable) {
	if len(t.bufs) != 0 {
		panic("heap: taking externals into a non-empty table")
	}
	t.bufs = src.bufs
	src.bufs = nil
}
