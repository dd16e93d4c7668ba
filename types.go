package nntp

import (
	"strings"
	"time"
)

// OrderedHeaders is an insertion-ordered set of header name/value pairs with
// case-insensitive lookup and case-preserving iteration, backing the "extra
// headers" carried on an ArticleInfo beyond the well-known fields.
type OrderedHeaders struct {
	names  []string
	values []string
	index  map[string]int // lowercased name -> position
}

// NewOrderedHeaders builds an OrderedHeaders from name/value pairs, in order.
func NewOrderedHeaders(pairs ...[2]string) *OrderedHeaders {
	h := &OrderedHeaders{index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		h.Set(p[0], p[1])
	}
	return h
}

// Set adds or replaces the value for name, preserving the original insertion
// position on replace and the original case on first insertion.
func (h *OrderedHeaders) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	key := strings.ToLower(name)
	if i, ok := h.index[key]; ok {
		h.values[i] = value
		return
	}
	h.index[key] = len(h.names)
	h.names = append(h.names, name)
	h.values = append(h.values, value)
}

// Get looks up a header by name, case-insensitively.
func (h *OrderedHeaders) Get(name string) (string, bool) {
	if h == nil || h.index == nil {
		return "", false
	}
	i, ok := h.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return h.values[i], true
}

// Len reports the number of headers.
func (h *OrderedHeaders) Len() int {
	if h == nil {
		return 0
	}
	return len(h.names)
}

// Range calls fn for every header in insertion order, with the original
// (not lowercased) name.
func (h *OrderedHeaders) Range(fn func(name, value string)) {
	if h == nil {
		return
	}
	for i, name := range h.names {
		fn(name, h.values[i])
	}
}

// Equal reports whether h and o carry the same headers in the same order,
// letting go-cmp compare OrderedHeaders values without reaching into its
// unexported fields.
func (h *OrderedHeaders) Equal(o *OrderedHeaders) bool {
	if h.Len() != o.Len() {
		return false
	}
	equal := true
	i := 0
	h.Range(func(name, value string) {
		on, ov := o.names[i], o.values[i]
		if name != on || value != ov {
			equal = false
		}
		i++
	})
	return equal
}

// ArticleInfo is the immutable per-article metadata record described by the
// backend contract; it never carries the article body.
type ArticleInfo struct {
	Number     int64
	Subject    string
	From       string
	Date       time.Time
	MessageID  string
	References string
	Bytes      int64
	Lines      int64
	Headers    *OrderedHeaders
}

// Article pairs ArticleInfo with the article body. Lines in Body are
// separated by bare '\n'; dot-stuffing is applied only at the wire layer.
type Article struct {
	Info ArticleInfo
	Body string
}

// Group describes one newsgroup as exposed by a Backend.
type Group struct {
	Name             string
	ShortDescription string
	Number           int64
	Low              int64
	High             int64
	Created          time.Time
	PostingPermitted bool
}
