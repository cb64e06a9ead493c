// Package derive turns raw article text into its derived forms: slug, word
// count, reading time, rendered HTML and a plain-text excerpt.
package derive

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLen caps generated slugs
const MaxSlugLen = 100

var (
	reDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reHyphens    = regexp.MustCompile(`-+`)
	reSlug       = regexp.MustCompile(`^[a-z0-9-]+$`)

	pinyinArgs = pinyin.NewArgs()
)

// Slugger derives URL-safe slugs from titles
type Slugger struct {
	// Transliterate converts Han characters to toneless pinyin before
	// stripping, so CJK titles keep a readable slug.
	Transliterate bool
	// Now is used for the timestamp fallback; defaults to time.Now.
	Now func() time.Time
}

// Slugify derives a slug with the default Slugger
func Slugify(title string) string {
	return Slugger{}.Slugify(title)
}

// Slugify lowercases, strips diacritics and anything outside [a-z0-9\s-],
// joins whitespace runs with a hyphen and caps the result at MaxSlugLen.
// Blank input yields "untitled-<epoch-ms>", an empty result "article-<epoch-ms>".
func (s Slugger) Slugify(title string) string {
	if strings.TrimSpace(title) == "" {
		return fmt.Sprintf("untitled-%d", s.now().UnixMilli())
	}

	out := strings.ToLower(title)
	if s.Transliterate {
		out = transliterate(out)
	}
	out = stripMarks(out)
	out = reDisallowed.ReplaceAllString(out, "")
	out = reSpaces.ReplaceAllString(out, "-")
	out = reHyphens.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")

	if len(out) > MaxSlugLen {
		out = strings.TrimRight(out[:MaxSlugLen], "-")
	}
	if out == "" {
		return fmt.Sprintf("article-%d", s.now().UnixMilli())
	}
	return out
}

func (s Slugger) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsValidSlug reports whether a caller-supplied slug is acceptable
func IsValidSlug(slug string) bool {
	return reSlug.MatchString(slug)
}

// stripMarks decomposes the string and drops combining marks (é -> e)
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			b.WriteRune(r)
			continue
		}
		py := pinyin.LazyPinyin(string(r), pinyinArgs)
		if len(py) == 0 {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(py[0])
		b.WriteByte(' ')
	}
	return b.String()
}

// SlugExistsFunc reports whether a candidate slug is already taken
type SlugExistsFunc func(candidate string) (bool, error)

// UniqueSlug returns base, or base with a "-2", "-3", ... suffix when taken.
func UniqueSlug(base string, exists SlugExistsFunc) (string, error) {
	candidate := base
	for i := 0; i < 50; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i+2)
		candidate = trimForSuffix(base, suffix) + suffix
	}

	suffix := fmt.Sprintf("-%x", time.Now().UnixNano()&0xffffff)
	return trimForSuffix(base, suffix) + suffix, nil
}

func trimForSuffix(base, suffix string) string {
	keep := MaxSlugLen - len(suffix)
	if len(base) > keep {
		base = base[:keep]
	}
	base = strings.TrimRight(base, "-")
	if base == "" {
		return "article"
	}
	return base
}
