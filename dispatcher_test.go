package nntp_test

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abusenet/nntpserver"
)

// memBackend is a tiny in-memory, auth-capable Backend used only to drive
// the dispatcher's AUTHINFO and HDR/OVER paths end to end; it is not meant
// to be a realistic example (see examples/staticbackend and
// examples/hnbackend for those).
type memBackend struct {
	group    nntp.Group
	articles map[int64]nntp.Article
	authPass string
}

func newMemBackend() *memBackend {
	g := nntp.Group{Name: "test.group", Number: 2, Low: 1, High: 2, Created: time.Unix(0, 0).UTC(), PostingPermitted: true}
	return &memBackend{
		group: g,
		articles: map[int64]nntp.Article{
			1: {
				Info: nntp.ArticleInfo{Number: 1, Subject: "first", From: "a@x", Date: time.Unix(1000, 0).UTC(), MessageID: "<1@x>"},
				Body: "body one",
			},
			2: {
				Info: nntp.ArticleInfo{Number: 2, Subject: "second", From: "b@x", Date: time.Unix(2000, 0).UTC(), MessageID: "<2@x>"},
				Body: "body two",
			},
		},
		authPass: "right",
	}
}

func (b *memBackend) Groups(ctx context.Context) ([]nntp.Group, error) { return []nntp.Group{b.group}, nil }
func (b *memBackend) Group(ctx context.Context, name string) (nntp.Group, error) {
	if name != b.group.Name {
		return nntp.Group{}, &nntp.NoSuchGroup{Name: name}
	}
	return b.group, nil
}
func (b *memBackend) Subscriptions(ctx context.Context) ([]string, error) { return nil, nntp.ErrNotSupported }

func (b *memBackend) ArticleInfoByNumber(ctx context.Context, group nntp.Group, number int64) (nntp.ArticleInfo, error) {
	a, ok := b.articles[number]
	if !ok {
		return nntp.ArticleInfo{}, &nntp.ArticleNotFound{Key: "number"}
	}
	return a.Info, nil
}
func (b *memBackend) ArticleInfoByMessageID(ctx context.Context, id string) (nntp.ArticleInfo, error) {
	for _, a := range b.articles {
		if a.Info.MessageID == id {
			return a.Info, nil
		}
	}
	return nntp.ArticleInfo{}, &nntp.ArticleNotFound{Key: id}
}
func (b *memBackend) ArticleByNumber(ctx context.Context, group nntp.Group, number int64) (nntp.Article, error) {
	a, ok := b.articles[number]
	if !ok {
		return nntp.Article{}, &nntp.ArticleNotFound{Key: "number"}
	}
	return a, nil
}
func (b *memBackend) ArticleByMessageID(ctx context.Context, id string) (nntp.Article, error) {
	for _, a := range b.articles {
		if a.Info.MessageID == id {
			return a, nil
		}
	}
	return nntp.Article{}, &nntp.ArticleNotFound{Key: id}
}
func (b *memBackend) ArticleInfosInRange(ctx context.Context, group nntp.Group, lo, hi int64) ([]nntp.ArticleInfo, error) {
	var out []nntp.ArticleInfo
	for n := lo; n <= hi; n++ {
		if a, ok := b.articles[n]; ok {
			out = append(out, a.Info)
		}
	}
	return out, nil
}
func (b *memBackend) NewNews(ctx context.Context, group string, since time.Time) ([]string, error) {
	return nil, nntp.ErrNotSupported
}
func (b *memBackend) NewGroups(ctx context.Context, since time.Time) ([]nntp.Group, error) {
	return nil, nntp.ErrNotSupported
}
func (b *memBackend) AuthRequired(ctx context.Context) bool { return true }
func (b *memBackend) AuthInfo(ctx context.Context, user, pass string) (interface{}, error) {
	if pass != b.authPass {
		return nil, &nntp.AuthenticationError{Reason: "bad credentials"}
	}
	return "token-" + user, nil
}
func (b *memBackend) AllowPost(ctx context.Context) bool { return true }
func (b *memBackend) Post(ctx context.Context, lines []string) error { return nil }
func (b *memBackend) Refresh(ctx context.Context) error               { return nntp.ErrNotSupported }
func (b *memBackend) Date(ctx context.Context) time.Time              { return time.Unix(3000, 0).UTC() }
func (b *memBackend) Help(ctx context.Context) (string, bool)         { return "", false }
func (b *memBackend) Debugging() bool                                 { return false }

func dial(t *testing.T, backend nntp.Backend) (*bufio.Reader, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	eng := nntp.NewEngine(backend)
	go eng.Serve(server)
	t.Cleanup(func() { client.Close() })
	return bufio.NewReader(client), client
}

func send(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func recv(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line[:len(line)-2]
}

func recvUntilDot(t *testing.T, r *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		l := recv(t, r)
		if l == "." {
			return lines
		}
		lines = append(lines, l)
	}
}

func TestAuthSequencing(t *testing.T) {
	r, conn := dial(t, newMemBackend())
	recv(t, r) // greeting

	send(t, conn, "AUTHINFO PASS x")
	require.Equal(t, "482 Authentication commands issued out of sequence", recv(t, r))

	send(t, conn, "AUTHINFO USER alice")
	require.Equal(t, "381 Enter passphrase", recv(t, r))

	send(t, conn, "AUTHINFO PASS wrong")
	require.Equal(t, "481 bad credentials", recv(t, r))

	send(t, conn, "AUTHINFO PASS right")
	require.Equal(t, "281 Authentication accepted", recv(t, r))

	send(t, conn, "AUTHINFO USER alice")
	require.Equal(t, "502 Command unavailable", recv(t, r))
}

func TestHdrByRange(t *testing.T) {
	r, conn := dial(t, newMemBackend())
	recv(t, r) // greeting

	send(t, conn, "GROUP test.group")
	recv(t, r)

	send(t, conn, "HDR subject 1-2")
	require.Equal(t, "225 Headers follow(multi-line)", recv(t, r))
	lines := recvUntilDot(t, r)
	require.Equal(t, []string{"1 first", "2 second"}, lines)
}

func TestOverByMessageIDNotFound(t *testing.T) {
	r, conn := dial(t, newMemBackend())
	recv(t, r) // greeting

	send(t, conn, "GROUP test.group")
	recv(t, r)

	send(t, conn, "OVER <missing@x>")
	require.Equal(t, "430 No article with that message-id", recv(t, r))
}

func TestCapabilitiesAdvertisesAuthinfoUntilAuthenticated(t *testing.T) {
	r, conn := dial(t, newMemBackend())
	recv(t, r) // greeting

	send(t, conn, "CAPABILITIES")
	recv(t, r)
	lines := recvUntilDot(t, r)
	require.Contains(t, lines, "AUTHINFO USER")
	require.NotContains(t, lines, "POST", "posting requires authentication while AuthRequired is true")

	send(t, conn, "AUTHINFO USER alice")
	recv(t, r)
	send(t, conn, "AUTHINFO PASS right")
	recv(t, r)

	send(t, conn, "CAPABILITIES")
	recv(t, r)
	lines = recvUntilDot(t, r)
	require.NotContains(t, lines, "AUTHINFO USER")
	require.Contains(t, lines, "POST")
}
