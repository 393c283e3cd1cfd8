package pages

// ShiftDown removes key k from a display- or page-number-keyed map and
// moves every larger key down by one, matching the deletion of page k.
func ShiftDown[V any](m map[int]V, k int) map[int]V {
	out := make(map[int]V, len(m))
	for n, v := range m {
		switch {
		case n < k:
			out[n] = v
		case n > k:
			out[n-1] = v
		}
	}
	return out
}

// ShiftUp moves every key at or above k up by one, making room for a page
// inserted at display k.
func ShiftUp[V any](m map[int]V, k int) map[int]V {
	out := make(map[int]V, len(m))
	for n, v := range m {
		if n >= k {
			out[n+1] = v
		} else {
			out[n] = v
		}
	}
	return out
}
