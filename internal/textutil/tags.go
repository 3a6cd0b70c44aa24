package textutil

import "strings"

// LimitTags keeps tags in order while their combined length, counting one
// separating comma between neighbours, stays within limit runes. The first
// tag that would overflow ends the list. Blank tags are skipped.
func LimitTags(tags []string, limit int) []string {
	kept := make([]string, 0, len(tags))
	total := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		size := RuneLen(tag)
		if len(kept) > 0 {
			size++
		}
		if total+size > limit {
			break
		}
		kept = append(kept, tag)
		total += size
	}
	return kept
}
