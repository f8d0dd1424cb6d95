// Package hashfilter post-processes a user-supplied hash so that zero can be
// used, unambiguously, as "this record has never been written" inside a
// table's record array.
package hashfilter

// sentinel replaces a user hash of exactly zero.
//
// Any fixed nonzero constant works. 0x55555555 alternates bits, so it does
// not bias either half of a power-of-two mask more than a typical hash
// would.
const sentinel int32 = 0x55555555

// Apply maps h to a filtered hash: zero becomes sentinel, everything else
// is unchanged. The result is never zero, so a stored hash of zero always
// means "this record has never been written".
func Apply(h int32) int32 {
	if h == 0 {
		return sentinel
	}

	return h
}
