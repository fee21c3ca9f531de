// Package extfn turns a function into a sealed capability attached to a
// type.
//
// A template is a method on the placeholder type Self, annotated with a
// target directive:
//
//	//extfn:target Text
//	func (s Self) CountDigits() int {
//		n := 0
//		for _, r := range s {
//			if unicode.IsDigit(r) {
//				n++
//			}
//		}
//		return n
//	}
//
// Expanding it yields the CountDigits capability interface, an unexported
// seal marker that only this package can satisfy, and the method on Text.
//
// A target starting with the interface keyword attaches the capability to
// every type satisfying the listed constraints instead:
//
//	//extfn:target [K comparable, V any] interface ~map[K]V
//
// Go has no blanket implementations, so this path emits a generic adapter
// struct, InsertIfAbsentFor[K, V, Self], whose Value field holds the
// receiver.
//
// An //extfn:async directive in the doc comment is carried onto the
// capability and every generated method.
package extfn
