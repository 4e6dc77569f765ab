package user

// SetNewIDFunc swaps the user id generator. The returned func restores it.
func SetNewIDFunc(f func() string) (restore func()) {
	prev := newID
	newID = f
	return func() { newID = prev }
}
