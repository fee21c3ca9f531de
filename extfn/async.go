package extfn

// asyncPrefix is the directive line preceding every method-bearing
// declaration of an async function. Seal methods and the adapter struct
// are emitted without it.
func (b *builder) asyncPrefix() string {
	if !b.fn.Async {
		return ""
	}
	return AsyncDirective + "\n"
}
