package derive

import (
	"regexp"
	"unicode"
)

// WordsPerMinute is the reading speed behind ReadingTime
const WordsPerMinute = 200

var (
	reFencedCode = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`\n]*`")
	reImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reLineMarker = regexp.MustCompile(`(?m)^[ \t]{0,3}(#{1,6}[ \t]*|>[ \t]*|[-*+][ \t]+|\d+\.[ \t]+)`)
	reEmphasis   = regexp.MustCompile(`\*{1,3}|~~|__`)
	reWord       = regexp.MustCompile(`[A-Za-z0-9_]+`)
)

// CountWords counts words in markdown content after removing structural
// noise. Every CJK character is one word; every [A-Za-z0-9_]+ run is one word.
func CountWords(content string) int {
	if content == "" {
		return 0
	}

	text := reFencedCode.ReplaceAllString(content, " ")
	text = reInlineCode.ReplaceAllString(text, " ")
	text = reImage.ReplaceAllString(text, " ")
	text = reLink.ReplaceAllString(text, "$1")
	text = reLineMarker.ReplaceAllString(text, "")
	text = reEmphasis.ReplaceAllString(text, "")

	cjk := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		}
	}
	return cjk + len(reWord.FindAllStringIndex(text, -1))
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// ReadingTime returns max(1, ceil(words/200)) minutes. Non-positive counts yield 1.
func ReadingTime(words int) int {
	if words <= 0 {
		return 1
	}
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Metrics bundles everything derived from an article body
type Metrics struct {
	WordCount   int
	ReadingTime int
	HTML        string
}

// Analyze derives word count, reading time and rendered HTML in one pass
func Analyze(content string) Metrics {
	words := CountWords(content)
	return Metrics{
		WordCount:   words,
		ReadingTime: ReadingTime(words),
		HTML:        Render(content),
	}
}
