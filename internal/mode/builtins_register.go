package mode

// RegisterBuiltins registers the mandatory built-in modes (full, partial,
// none) plus the supplemented fixed mode on r. Callers constructing a
// fresh Registry for the engine should call this once before accepting
// any policy configuration.
func RegisterBuiltins(r *Registry) {
	r.MustRegister(FullDefinition())
	r.MustRegister(PartialDefinition())
	r.MustRegister(NoneDefinition())
	r.MustRegister(FixedDefinition())
}
