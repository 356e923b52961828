package fetch

// paginate splits text into pages of at most size runes. A page ends after
// the last newline inside its window, unless the window holds no newline,
// in which case it is cut at size. An empty text yields a single empty page,
// so that page 0 always exists.
func paginate(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}
	pages := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			pages = append(pages, string(runes[start:]))
			break
		}
		cut := end
		for i := end - 1; i > start; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		pages = append(pages, string(runes[start:cut]))
		start = cut
	}
	return pages
}
