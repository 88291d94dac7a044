package util

// Calculate clamps page/size to sane bounds and returns the offset and
// limit for the query.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	from = (page - 1) * size
	return from, size
}

// TotalPages returns how many pages a result set of count rows spans.
func TotalPages(count int64, size int) int {
	if size <= 0 || count <= 0 {
		return 0
	}
	pages := count / int64(size)
	if count%int64(size) != 0 {
		pages++
	}
	return int(pages)
}
