package nntp

import (
	"strconv"
	"strings"
)

// rfc5322Date formats t the way a News overview line and an injected Date
// header expect: "Mon, 02 Jan 2006 15:04:05 -0700".
func rfc5322Date(t ArticleInfo) string {
	return t.Date.Format("Mon, 02 Jan 2006 15:04:05 -0700")
}

// sanitizeOverviewField strips CR and LF from a value bound for a
// tab-separated OVER/XOVER line and replaces each TAB with a single space,
// since any of the three would corrupt the framing or desynchronize the
// column count.
func sanitizeOverviewField(s string) string {
	if strings.IndexAny(s, "\r\n\t") < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\r', '\n':
		case '\t':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatOverview renders one OVER/XOVER data line for info: the standard
// eight tab-separated fields (number, subject, from, date, message-id,
// references, bytes, lines) followed by one additional field per header
// stored in info.Headers, each formatted "Name: value".
func FormatOverview(info ArticleInfo) string {
	fields := []string{
		strconv.FormatInt(info.Number, 10),
		sanitizeOverviewField(info.Subject),
		sanitizeOverviewField(info.From),
		sanitizeOverviewField(rfc5322Date(info)),
		sanitizeOverviewField(info.MessageID),
		sanitizeOverviewField(info.References),
		strconv.FormatInt(info.Bytes, 10),
		strconv.FormatInt(info.Lines, 10),
	}
	info.Headers.Range(func(name, value string) {
		fields = append(fields, sanitizeOverviewField(name+": "+value))
	})
	return strings.Join(fields, "\t")
}

// overviewFmtLines is the fixed response body for LIST OVERVIEW.FMT: the
// seven named base fields, "Subject:" through "Lines:". The leading
// article-number column is implied and not listed, and no ":full" entries
// follow since this server carries no additional indexed headers beyond the
// base set.
var overviewFmtLines = []string{
	"Subject:",
	"From:",
	"Date:",
	"Message-ID:",
	"References:",
	"Bytes:",
	"Lines:",
}

// OverviewFmtLines returns the response body lines for LIST OVERVIEW.FMT.
func OverviewFmtLines() []string {
	out := make([]string, len(overviewFmtLines))
	copy(out, overviewFmtLines)
	return out
}

// FormatHdr renders one HDR/XHDR data line: "<number> <value>" for a numeric
// range, or "<message-id> <value>" when the request addressed a single
// message-id.
func FormatHdr(key string, value string) string {
	return key + " " + sanitizeOverviewField(value)
}

// HeaderValue resolves one of the well-known overview header names against
// info, falling back to the OrderedHeaders bag for anything else. ok is
// false if name isn't one of the well-known fields and isn't present in
// Headers either.
func HeaderValue(info ArticleInfo, name string) (value string, ok bool) {
	switch strings.ToLower(name) {
	case "subject":
		return info.Subject, true
	case "from":
		return info.From, true
	case "date":
		return rfc5322Date(info), true
	case "message-id":
		return info.MessageID, true
	case "references":
		return info.References, true
	case "bytes", ":bytes":
		return strconv.FormatInt(info.Bytes, 10), true
	case "lines", ":lines":
		return strconv.FormatInt(info.Lines, 10), true
	default:
		return info.Headers.Get(name)
	}
}
