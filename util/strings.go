package util

// Coalesce picks the first value that is set, so per-request options can
// fall back to configuration:
//
//	model := util.Coalesce(req.Model, cfg.Model) // "" -> cfg.Model
func Coalesce[T comparable](values ...T) T {
	var unset T
	for i := range values {
		if values[i] != unset {
			return values[i]
		}
	}
	return unset
}
