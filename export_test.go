package nexus

// ResetManifest clears the registered schema modules and context factory so
// registrations made by one test do not leak into later app assemblies.
func ResetManifest() {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	pendingModules = nil
	pendingFn = nil
}
