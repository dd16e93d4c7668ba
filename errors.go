package nntp

import "fmt"

// DataError indicates malformed framing, an oversize line, or a premature
// end of stream. It is always fatal to the session.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string { return "data error: " + e.Reason }

// ArticleNotFound is returned by a Backend when a requested article number
// or message-id does not exist. The dispatcher maps it to 423, 430 or 420
// depending on the command and argument form.
type ArticleNotFound struct {
	Key string
}

func (e *ArticleNotFound) Error() string { return "no such article: " + e.Key }

// AuthenticationError is returned by Backend.AuthInfo on bad credentials.
// The dispatcher reports it as "481 <reason>" and leaves the session in
// the user-pending auth state.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return e.Reason }

// PostError is returned by Backend.Post when an article is rejected. The
// dispatcher reports it as "441 Posting failed: <reason>" and keeps the
// session open.
type PostError struct {
	Reason string
}

func (e *PostError) Error() string { return e.Reason }

// SyntaxError describes malformed command arguments. It never crosses the
// Backend boundary; the dispatcher answers malformed arguments with
// "501 Syntax Error" directly and does not construct this type.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string { return "syntax error: " + e.Reason }

// ServerError is a generic Backend failure with no more specific taxonomy.
// The dispatcher reports it as 503 unless the call site maps it elsewhere.
type ServerError struct {
	Reason string
}

func (e *ServerError) Error() string { return e.Reason }

// NoSuchGroup is returned by Backend.Groups-adjacent lookups for an unknown
// newsgroup name.
type NoSuchGroup struct {
	Name string
}

func (e *NoSuchGroup) Error() string { return fmt.Sprintf("no such newsgroup: %q", e.Name) }
