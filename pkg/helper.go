package pkg

import (
	"regexp"
	"strings"
)

// SplitRecipients parses a comma-separated address list the way callers
// type them: entries trimmed, empties dropped. De-duplication against the
// primary recipient is the dispatcher's decision, not done here.
func SplitRecipients(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var fileNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SafeFileName turns free text into something usable in a
// Content-Disposition filename.
func SafeFileName(s string) string {
	s = fileNameRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "interview"
	}
	return s
}

// AttachmentContentType maps a résumé filename to the MIME types the
// upload layer accepts; anything else is sent as octet-stream.
func AttachmentContentType(filename string) string {
	switch strings.ToLower(filename[strings.LastIndex(filename, ".")+1:]) {
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
