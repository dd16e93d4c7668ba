package nntp

import (
	"context"
	"errors"
	"time"
)

// ErrNotSupported is returned by the optional Backend methods (NewNews,
// NewGroups, AuthInfo, Post, Refresh) when a particular backend doesn't
// implement that capability. It is the one sentinel that replaces the
// inheritance-based optional-method hierarchy of the original server: a
// backend implements the whole interface and opts out of a capability by
// returning this error instead of being asked to subclass a narrower base.
var ErrNotSupported = errors.New("nntp: capability not supported by this backend")

// Backend is the contract a concrete news source implements. The dispatcher
// never holds article storage itself; every lookup, listing and mutation
// goes through these methods. Methods may be called concurrently from
// different sessions and must be safe for that.
type Backend interface {
	// Groups lists every newsgroup the server carries, for LIST ACTIVE and
	// friends.
	Groups(ctx context.Context) ([]Group, error)

	// Group resolves a single newsgroup by name, for GROUP and LISTGROUP.
	// It returns *NoSuchGroup if name isn't carried.
	Group(ctx context.Context, name string) (Group, error)

	// Subscriptions lists the groups LIST SUBSCRIPTIONS recommends a reader
	// subscribe to by default. An empty, nil-error result is a valid answer.
	Subscriptions(ctx context.Context) ([]string, error)

	// ArticleInfoByNumber resolves overview metadata for an article by its
	// number within group. It returns *ArticleNotFound if number isn't
	// present.
	ArticleInfoByNumber(ctx context.Context, group Group, number int64) (ArticleInfo, error)

	// ArticleInfoByMessageID resolves overview metadata for an article by
	// its global message-id, independent of any selected group. It returns
	// *ArticleNotFound if the id isn't known.
	ArticleInfoByMessageID(ctx context.Context, messageID string) (ArticleInfo, error)

	// ArticleByNumber resolves the full article (metadata and body) by
	// number within group.
	ArticleByNumber(ctx context.Context, group Group, number int64) (Article, error)

	// ArticleByMessageID resolves the full article by global message-id.
	ArticleByMessageID(ctx context.Context, messageID string) (Article, error)

	// ArticleInfosInRange returns overview metadata for every article number
	// n in group with lo <= n <= hi, in ascending order, for LISTGROUP,
	// OVER/XOVER and HDR/XHDR. Missing numbers within the range are simply
	// omitted, not errors.
	ArticleInfosInRange(ctx context.Context, group Group, lo, hi int64) ([]ArticleInfo, error)

	// NewNews lists the message-ids of articles in group (or across all
	// groups if group is "*") created at or after since. Returns
	// ErrNotSupported if the backend doesn't index articles by creation
	// time.
	NewNews(ctx context.Context, group string, since time.Time) ([]string, error)

	// NewGroups lists groups created at or after since. Returns
	// ErrNotSupported if the backend has a fixed group set.
	NewGroups(ctx context.Context, since time.Time) ([]Group, error)

	// AuthRequired reports whether this backend gates any functionality on
	// AUTHINFO. It is a standing mode flag, independent of whether a given
	// session has already authenticated.
	AuthRequired(ctx context.Context) bool

	// AuthInfo validates a username/password pair submitted via
	// AUTHINFO USER/PASS. The returned value is stashed on the Session and
	// otherwise unused by the dispatcher. *AuthenticationError rejects the
	// credentials; AuthRequired should be false if this is never called.
	AuthInfo(ctx context.Context, user, pass string) (interface{}, error)

	// AllowPost reports whether POST/IHAVE should be offered at all. A
	// backend that never accepts posts should return false here rather than
	// failing every Post call.
	AllowPost(ctx context.Context) bool

	// Post accepts a newly submitted article as the raw, dot-unstuffed
	// lines read after the 340 prompt (headers followed by a blank line
	// followed by body). Returns *PostError if this particular article is
	// rejected.
	Post(ctx context.Context, lines []string) error

	// Refresh gives a backend a hook to repopulate its view of the
	// underlying source (e.g. poll an upstream feed). The dispatcher calls it
	// before every client command except QUIT. Returns ErrNotSupported if the
	// backend has nothing to refresh.
	Refresh(ctx context.Context) error

	// Date returns the backend's notion of the current UTC instant, used by
	// the DATE command and as the default NEWNEWS/NEWGROUPS comparison
	// clock.
	Date(ctx context.Context) time.Time

	// Help returns the wire body for HELP. ok=false asks the dispatcher to
	// use its own generated default.
	Help(ctx context.Context) (text string, ok bool)

	// Debugging reports whether the dispatcher should log at Debug level
	// for this backend's sessions, mirroring the original server's
	// per-instance debugging flag.
	Debugging() bool
}
