package quiz

// Window splits text into consecutive chunks of size runes and returns
// the chunk at index along with the number of chunks. An index past the
// end clamps to the last chunk, a negative one to the first. A
// non-positive size returns the whole text as a single chunk.
func Window(text string, size, index int) (string, int) {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return text, 1
	}

	total := (len(runes) + size - 1) / size
	if index < 0 {
		index = 0
	}
	if index >= total {
		index = total - 1
	}

	start := index * size
	end := min(start+size, len(runes))
	return string(runes[start:end]), total
}
