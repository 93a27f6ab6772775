package domain

// Zero overwrites key material with zeros once it is no longer needed.
// A nil slice is a no-op.
func Zero(b []byte) {
	clear(b)
}
