package utils

import "strings"

// Token estimates use the rough 4-characters-per-token rule. They only size
// prompts; nothing bills by them.
const charsPerToken = 4

// CountTokens estimates the number of tokens in text.
func CountTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	if n < charsPerToken {
		return 1
	}
	return n / charsPerToken
}

// TruncateToTokenLimit cuts text to about limit tokens. When the cut falls
// inside a multi-line text it backs up to the last complete line.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	max := limit * charsPerToken
	if max >= len(runes) {
		return text
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return cut[:i]
	}
	return cut
}
