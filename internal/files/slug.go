package files

import "strings"

// Slugify converts an arbitrary string into a lowercase, filesystem-safe
// slug. Runs of anything other than ASCII letters and digits become a single
// hyphen, leading and trailing hyphens are trimmed and the result is capped
// at 50 characters.
func Slugify(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return "untitled"
	}

	// Pure ASCII, so byte length is character length.
	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	return slug
}

// SessionFolderName is the canonical folder name for a session on date
// imaging target, e.g. "2024-03-01_m42-orion-nebula".
func SessionFolderName(date, target string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return Slugify(target)
	}
	return Slugify(date) + "_" + Slugify(target)
}
