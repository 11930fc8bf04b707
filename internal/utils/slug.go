package utils

import (
	"strconv"
	"strings"
	"time"
)

// Slugify lowercases s, collapses every run of non-alphanumeric
// characters into single hyphens and trims leading/trailing hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}

// UniqueSlug appends a base36 timestamp so two hosts with the same
// business name never collide on the slug column.
func UniqueSlug(s string) string {
	base := Slugify(s)
	suffix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
