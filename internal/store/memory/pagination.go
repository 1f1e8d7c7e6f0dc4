package memory

// paginate slices matches to the requested page (1-indexed); perPage <= 0
// disables pagination and returns every match (§9 "Metadata search").
func paginate[T any](matches []T, page, perPage int) []T {
	if perPage <= 0 {
		return matches
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(matches) {
		return nil
	}
	end := start + perPage
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end]
}
