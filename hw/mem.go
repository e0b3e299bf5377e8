package hw

// MemReg is a memory-backed Reg8 for host tests and simulators. It is not
// safe for concurrent use; host tests drive producer and consumer from the
// same goroutine, mirroring the serialized interrupt model on target.
type MemReg struct {
	v uint8
}

func (r *MemReg) Get() uint8 { return r.v }

func (r *MemReg) Set(v uint8) { r.v = v }

func (r *MemReg) SetBits(mask uint8) { r.v |= mask }

func (r *MemReg) ClearBits(mask uint8) { r.v &^= mask }

func (r *MemReg) HasBits(mask uint8) bool { return r.v&mask == mask }
