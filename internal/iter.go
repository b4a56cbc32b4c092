package internal

import (
	"iter"
)

// IterSeq2Concat concatenates multiple dual-return iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterSeq2Index yields f(n) for each n in [0, count).
func IterSeq2Index[T1 any, T2 any](count int, f func(n int) (T1, T2)) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for n := range count {
			if !yield(f(n)) {
				return
			}
		}
	}
}
