package content

import (
	"fmt"
	"strings"
)

const fallbackSlug = "untitled"

// GenerateSlug lowercases s, collapses every run of characters outside
// [a-z0-9] into a single hyphen and trims hyphens at both ends.
func GenerateSlug(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}

// Title normalizes whitespace in a pillar topic.
func Title(pillarTopic string) string {
	return strings.Join(strings.Fields(pillarTopic), " ")
}

// SlugAllocator hands out unique slugs, suffixing collisions with -2, -3, ...
// in the order Claim is called. Not safe for concurrent use.
type SlugAllocator struct {
	taken map[string]struct{}
}

// NewSlugAllocator returns an allocator with no slugs taken.
func NewSlugAllocator() *SlugAllocator {
	return &SlugAllocator{taken: map[string]struct{}{}}
}

// Claim returns the slug for topic, or a suffixed variant if it is taken.
func (a *SlugAllocator) Claim(topic string) string {
	base := GenerateSlug(topic)
	if base == "" {
		base = fallbackSlug
	}
	slug := base
	for n := 2; ; n++ {
		if _, ok := a.taken[slug]; !ok {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	a.taken[slug] = struct{}{}
	return slug
}
