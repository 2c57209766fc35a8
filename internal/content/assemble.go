package content

import "strings"

// Assemble concatenates title, author and excerpt (each followed by a line
// break) and then the body content. The body is left out when the page's
// domain is one of skipContentDomains, whose bodies are unreliable
// (microblog pages mostly yield boilerplate).
func Assemble(x *Extracted, skipContentDomains []string) (string, error) {
	if x == nil {
		return "", ErrNothingToAssemble
	}

	var sb strings.Builder
	for _, f := range []*string{x.Title, x.Author, x.Excerpt} {
		if v := value(f); v != "" {
			sb.WriteString(v)
			sb.WriteByte('\n')
		}
	}
	if v := value(x.Content); v != "" && !domainMatches(value(x.Domain), skipContentDomains) {
		sb.WriteString(v)
		sb.WriteByte('\n')
	}

	if sb.Len() == 0 {
		return "", ErrNothingToAssemble
	}
	return sb.String(), nil
}

// domainMatches reports whether domain equals or is a subdomain of any entry.
func domainMatches(domain string, list []string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	for _, d := range list {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}
