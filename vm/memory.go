package vm

// DefaultDenseLimit is the highest address, exclusive, backed by the
// contiguous cell slice. Writes past it are kept in a sparse map so a single
// far write cannot allocate the whole gap.
const DefaultDenseLimit int64 = 1 << 22

// Memory is a growable, zero filled store of signed cells. Reads past the
// written extent return 0 and never allocate.
type Memory struct {
	cells  []int64
	sparse map[int64]int64
	limit  int64
}

type MemoryOpt func(*Memory) *Memory

func DenseLimit(limit int64) MemoryOpt {
	return func(m *Memory) *Memory {
		m.limit = limit
		return m
	}
}

// NewMemory copies program into a fresh memory starting at address 0.
func NewMemory(program []int64, opts ...MemoryOpt) *Memory {
	m := &Memory{
		cells: make([]int64, len(program)),
		limit: DefaultDenseLimit,
	}
	copy(m.cells, program)
	for _, opt := range opts {
		m = opt(m)
	}
	return m
}

func (m *Memory) Read(addr int64) (int64, error) {
	if addr < 0 {
		return 0, NewAddressError(addr)
	}
	if addr < int64(len(m.cells)) {
		return m.cells[addr], nil
	}
	// sparse is nil until the first far write, reading a nil map is fine
	return m.sparse[addr], nil
}

func (m *Memory) Write(addr, value int64) error {
	if addr < 0 {
		return NewAddressError(addr)
	}
	if addr < int64(len(m.cells)) {
		m.cells[addr] = value
		return nil
	}
	if addr >= m.limit {
		if m.sparse == nil {
			m.sparse = make(map[int64]int64)
		}
		m.sparse[addr] = value
		return nil
	}

	m.grow(addr + 1)
	m.cells[addr] = value
	return nil
}

// grow extends the dense cells to at least n, zero filling the new cells.
func (m *Memory) grow(n int64) {
	if n <= int64(cap(m.cells)) {
		m.cells = m.cells[:n]
		return
	}
	size := int64(cap(m.cells)) * 2
	if size < n {
		size = n
	}
	if size > m.limit {
		size = m.limit
	}
	cells := make([]int64, n, size)
	copy(cells, m.cells)
	m.cells = cells
}

// Len is the dense extent: one past the highest address held contiguously.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Snapshot returns a copy of the dense cells.
func (m *Memory) Snapshot() []int64 {
	out := make([]int64, len(m.cells))
	copy(out, m.cells)
	return out
}
