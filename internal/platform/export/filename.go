package export

// maxFilenameLen caps the sanitized stem so generated attachment names stay
// short across filesystems and download UIs.
const maxFilenameLen = 30

// SanitizeFilename turns an arbitrary client or org name into a safe
// filename stem: non-alphanumeric runes become underscores, the result is
// truncated to 30 characters, and an empty input yields "Unknown".
func SanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) > maxFilenameLen {
		out = out[:maxFilenameLen]
	}
	if len(out) == 0 {
		return "Unknown"
	}
	return string(out)
}
