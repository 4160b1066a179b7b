package cpu

// Stack describes the call stack of the running task. Size is counted in words,
// as reported by the RTOS.
type Stack struct {
	Base Addr
	Size uint32
}

// StackFunc returns the stack of the calling task.
type StackFunc func() Stack

// Contains reports whether addr lies within the stack. The upper bound is
// inclusive, so a pointer to the first word above the stack is considered part
// of it.
func (s Stack) Contains(addr Addr) bool {
	if s.Size == 0 {
		return false
	}
	return addr >= s.Base && uint64(addr) <= uint64(s.Base)+uint64(s.Size)*4
}

// End returns the address of the word above the stack.
func (s Stack) End() Addr {
	return s.Base + Addr(s.Size*4)
}
