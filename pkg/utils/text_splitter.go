package utils

// SplitText chunks text into overlapping windows of chunkSize runes. The
// overlap keeps sentences that straddle a boundary visible in both chunks.
// Invalid parameters fall back to sane values instead of erroring.
func SplitText(text string, chunkSize, overlap int) []string {
	if text == "" {
		return []string{}
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, (len(runes)/step)+1)
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
