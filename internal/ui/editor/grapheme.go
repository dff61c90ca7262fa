package editor

import "github.com/rivo/uniseg"

// lastGraphemeLen returns the number of code points in the last grapheme
// cluster of s, so backspace removes "é" written as e + U+0301 or a ZWJ emoji
// sequence in one step. Returns 0 for an empty string.
func lastGraphemeLen(s string) int {
	last := ""
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		last = cluster
	}
	return len([]rune(last))
}
