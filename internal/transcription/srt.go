package transcription

import (
	"fmt"
	"os"
	"strings"
)

// CountCues returns the number of timed cue blocks in the SRT file at path.
func CountCues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	count := 0
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		if strings.Contains(block, "-->") {
			count++
		}
	}
	return count, nil
}
