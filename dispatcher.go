package nntp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// handlerFunc implements one dispatch-table entry. args holds every
// whitespace-separated token after the command verb. secure reports whether
// the underlying transport is TLS, for the AUTHINFO-USER capability gate.
// A non-nil returned error is always fatal: the caller emits 205 and closes.
type handlerFunc func(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (quit bool, err error)

var handlers map[string]handlerFunc

func init() {
	handlers = map[string]handlerFunc{
		"CAPABILITIES": handleCapabilities,
		"MODE":         handleMode,
		"DATE":         handleDate,
		"QUIT":         handleQuit,
		"HELP":         handleHelp,
		"LIST":         handleList,
		"GROUP":        handleGroup,
		"LISTGROUP":    handleListgroup,
		"ARTICLE":      makeArticleHandler("ARTICLE"),
		"BODY":         makeArticleHandler("BODY"),
		"HEAD":         makeArticleHandler("HEAD"),
		"STAT":         makeArticleHandler("STAT"),
		"OVER":         handleOver,
		"XOVER":        handleOver,
		"HDR":          handleHdr,
		"XHDR":         handleHdr,
		"NEWNEWS":      handleNewnews,
		"NEWGROUPS":    handleNewgroups,
		"POST":         handlePost,
		"AUTHINFO":     handleAuthinfo,
	}
}

// Engine is the per-server protocol configuration shared by every session it
// spawns: a bound Backend plus the handful of deployment-level policy knobs
// that aren't properties of the backend itself.
type Engine struct {
	Backend Backend
	Logger  *logrus.Logger

	// RequireSecureAuth, if true, withholds AUTHINFO USER from the
	// CAPABILITIES list (and the command itself still works, per RFC 3977
	// servers MAY accept it anyway) unless the transport is TLS.
	RequireSecureAuth bool

	// MaxLineLength overrides the wire framer's line-length ceiling for
	// every session this Engine serves. Zero means use MaxLineLength (the
	// package constant).
	MaxLineLength int
}

// NewEngine builds an Engine around backend with a standard logrus logger.
func NewEngine(backend Backend) *Engine {
	return &Engine{Backend: backend, Logger: logrus.StandardLogger()}
}

func (e *Engine) logger() *logrus.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logrus.StandardLogger()
}

// Serve drives the NNTP session lifecycle over nc until QUIT, a fatal data
// error, or the peer closing the connection. It never returns an error: all
// failures are logged and result in the connection being closed.
func (e *Engine) Serve(nc net.Conn) {
	conn := NewConn(nc)
	if e.MaxLineLength > 0 {
		conn.MaxLine = e.MaxLineLength
	}
	sess := NewSession()
	ctx := context.Background()
	secure := isTLSConn(nc)

	log := e.logger().WithField("remote", nc.RemoteAddr())
	if e.Backend.Debugging() {
		log.Debug("session started")
	}

	if err := conn.WriteLine(e.greeting(ctx, sess)); err != nil {
		log.WithError(err).Warn("failed to write greeting")
		return
	}

	for {
		line, err := conn.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WithError(err).Debug("session ending on read error")
				var de *DataError
				if errors.As(err, &de) {
					_ = conn.WriteLine("205 Connection closing")
				}
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := strings.ToUpper(fields[0])
		args := fields[1:]

		if e.Backend.Debugging() {
			log.WithField("cmd", cmd).Debug("dispatching command")
		}

		if cmd != "QUIT" {
			if err := e.Backend.Refresh(ctx); err != nil && !errors.Is(err, ErrNotSupported) {
				log.WithError(err).Warn("backend refresh failed")
			}
		}

		handler, ok := handlers[cmd]
		if !ok {
			if err := conn.WriteLine("500 Unknown command"); err != nil {
				log.WithError(err).Debug("session ending on write error")
				return
			}
			continue
		}

		quit, err := handler(e, sess, conn, ctx, args, secure)
		if err != nil {
			log.WithError(err).Debug("session ending fatally")
			_ = conn.WriteLine("205 Connection closing")
			return
		}
		if quit {
			return
		}
	}
}

func isTLSConn(nc net.Conn) bool {
	_, ok := nc.(*tls.Conn)
	return ok
}

func (e *Engine) canPost(ctx context.Context, sess *Session) bool {
	if !e.Backend.AllowPost(ctx) {
		return false
	}
	if !e.Backend.AuthRequired(ctx) {
		return true
	}
	return sess.AuthState == AuthAuthenticated
}

func (e *Engine) greeting(ctx context.Context, sess *Session) string {
	if e.canPost(ctx, sess) {
		return "200 NNTP Service Ready, posting allowed"
	}
	return "201 NNTP Service Ready, posting prohibited"
}

func status(code int, msg string) string {
	return strconv.Itoa(code) + " " + msg
}

func handleCapabilities(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if err := conn.WriteLine("101 Capability list:"); err != nil {
		return false, err
	}
	lines := []string{
		"VERSION 2",
		"READER",
		"HDR",
		"NEWNEWS",
		"LIST ACTIVE NEWSGROUPS OVERVIEW.FMT SUBSCRIPTIONS",
		"OVER MSGID",
	}
	if eng.canPost(ctx, sess) {
		lines = append(lines, "POST")
	}
	if eng.Backend.AuthRequired(ctx) && sess.AuthState != AuthAuthenticated &&
		(!eng.RequireSecureAuth || secure) {
		lines = append(lines, "AUTHINFO USER")
	}
	return false, conn.WriteMultiline(lines)
}

func handleMode(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) != 1 || !strings.EqualFold(args[0], "READER") {
		return false, conn.WriteLine("501 Syntax Error")
	}
	return false, conn.WriteLine(eng.greeting(ctx, sess))
}

func handleDate(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	dateStr, timeStr := FormatDateTime(eng.Backend.Date(ctx), false)
	return false, conn.WriteLine(status(111, dateStr+timeStr))
}

func handleQuit(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	return true, conn.WriteLine("205 Connection closing")
}

const defaultHelpText = `Commands accepted by this server:

  CAPABILITIES, MODE READER, DATE, QUIT, HELP
  LIST [ACTIVE|NEWSGROUPS|OVERVIEW.FMT|SUBSCRIPTIONS]
  GROUP, LISTGROUP
  ARTICLE, HEAD, BODY, STAT
  OVER, XOVER, HDR, XHDR
  NEWNEWS, NEWGROUPS
  POST
  AUTHINFO USER, AUTHINFO PASS

Report problems to your server administrator.`

func handleHelp(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	text, ok := eng.Backend.Help(ctx)
	if !ok {
		text = defaultHelpText
	}
	if err := conn.WriteLine("100 Help text follows"); err != nil {
		return false, err
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapHelp(paragraph, 50)...)
	}
	return false, conn.WriteMultiline(lines)
}

// wrapHelp breaks text into lines of at most width runes, breaking only on
// spaces; a single word longer than width stays whole on its own line.
// Short lines (including empty ones, which preserve paragraph breaks) pass
// through unchanged.
func wrapHelp(text string, width int) []string {
	if len([]rune(text)) <= width {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	lines = append(lines, cur)
	return lines
}

func handleList(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	sub := "ACTIVE"
	var wildmat string
	if len(args) > 0 {
		sub = strings.ToUpper(args[0])
	}
	if len(args) > 1 {
		wildmat = args[1]
	}

	switch sub {
	case "ACTIVE":
		groups, err := eng.Backend.Groups(ctx)
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		if err := conn.WriteLine("215 list of newsgroups follows"); err != nil {
			return false, err
		}
		var lines []string
		for _, g := range groups {
			if wildmat != "" && g.Name != wildmat {
				continue
			}
			posting := "n"
			if g.PostingPermitted {
				posting = "y"
			}
			lines = append(lines, fmt.Sprintf("%s %d %d %s", g.Name, g.High, g.Low, posting))
		}
		return false, conn.WriteMultiline(lines)

	case "NEWSGROUPS":
		groups, err := eng.Backend.Groups(ctx)
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		if err := conn.WriteLine("215 information follows"); err != nil {
			return false, err
		}
		var lines []string
		for _, g := range groups {
			if wildmat != "" && g.Name != wildmat {
				continue
			}
			lines = append(lines, g.Name+"\t"+g.ShortDescription)
		}
		return false, conn.WriteMultiline(lines)

	case "OVERVIEW.FMT":
		if err := conn.WriteLine("215 Order of fields in overview database"); err != nil {
			return false, err
		}
		return false, conn.WriteMultiline(OverviewFmtLines())

	case "SUBSCRIPTIONS":
		names, err := eng.Backend.Subscriptions(ctx)
		if errors.Is(err, ErrNotSupported) {
			return false, conn.WriteLine("503 Facility not supported")
		}
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		if err := conn.WriteLine("215 information follows"); err != nil {
			return false, err
		}
		return false, conn.WriteMultiline(names)

	default:
		return false, conn.WriteLine("501 Syntax Error")
	}
}

// selectGroup resolves name against the backend and, on success, mutates
// sess in place and writes the 211 response. It reports ok=false (after
// writing the 411 response itself) on failure, so callers like LISTGROUP
// can bail out without double-reporting.
func selectGroup(eng *Engine, sess *Session, conn *Conn, ctx context.Context, name string) (ok bool, werr error) {
	g, err := eng.Backend.Group(ctx, name)
	var nsg *NoSuchGroup
	if errors.As(err, &nsg) {
		return false, conn.WriteLine("411 No such newsgroup")
	}
	if err != nil {
		return false, writeBackendError(conn, err)
	}
	sess.SelectGroup(&g)
	return true, conn.WriteLine(fmt.Sprintf("211 %d %d %d %s", g.Number, g.Low, g.High, g.Name))
}

func handleGroup(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) != 1 {
		return false, conn.WriteLine("501 Syntax Error")
	}
	_, err := selectGroup(eng, sess, conn, ctx, args[0])
	return false, err
}

func handleListgroup(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) >= 1 {
		ok, err := selectGroup(eng, sess, conn, ctx, args[0])
		if err != nil || !ok {
			return false, err
		}
		args = args[1:]
	} else if !sess.HasGroupSelected() {
		return false, conn.WriteLine("412 No newsgroup selected")
	}

	group := *sess.Group
	lo, hi := group.Low, group.High
	if len(args) >= 1 {
		r, ok := ParseRange(args[0])
		if !ok {
			return false, conn.WriteLine("501 Syntax Error")
		}
		lo = r.Low
		hi = group.High
		if r.High != nil {
			hi = *r.High
		}
	}

	infos, err := eng.Backend.ArticleInfosInRange(ctx, group, lo, hi)
	if err != nil {
		return false, writeBackendError(conn, err)
	}
	if err := conn.WriteLine(fmt.Sprintf("211 %d %d %d %s", group.Number, group.Low, group.High, group.Name)); err != nil {
		return false, err
	}
	lines := make([]string, len(infos))
	for i, info := range infos {
		lines[i] = strconv.FormatInt(info.Number, 10)
	}
	return false, conn.WriteMultiline(lines)
}

func isDecimal(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// makeArticleHandler builds the dispatch entry for one of ARTICLE, BODY,
// HEAD or STAT; the four share identical argument resolution and
// error-code semantics and differ only in which status code and payload
// shape the resolved article is rendered as.
func makeArticleHandler(verb string) handlerFunc {
	return func(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
		if len(args) > 1 {
			return false, conn.WriteLine("501 Syntax Error")
		}
		var arg string
		if len(args) == 1 {
			arg = args[0]
		}

		art, ok, err := resolveArticle(eng, sess, conn, ctx, arg)
		if err != nil || !ok {
			return false, err
		}
		return false, writeArticleResponse(conn, verb, art)
	}
}

func resolveArticle(eng *Engine, sess *Session, conn *Conn, ctx context.Context, arg string) (Article, bool, error) {
	notFound := func() (Article, bool, error) {
		return Article{}, false, conn.WriteLine("423 No article with that number")
	}
	notFoundMsgID := func() (Article, bool, error) {
		return Article{}, false, conn.WriteLine("423 No article with that message-id")
	}

	if arg == "" {
		if !sess.HasGroupSelected() {
			return Article{}, false, conn.WriteLine("412 No newsgroup selected")
		}
		if !sess.HasCurrentArticle() {
			return Article{}, false, conn.WriteLine("420 No current article selected")
		}
		art, err := eng.Backend.ArticleByNumber(ctx, *sess.Group, sess.CurrentArticle)
		var naf *ArticleNotFound
		if errors.As(err, &naf) {
			return notFound()
		}
		if err != nil {
			return Article{}, false, writeBackendError(conn, err)
		}
		return art, true, nil
	}

	if n, isNum := isDecimal(arg); isNum {
		if n == 0 {
			return notFound()
		}
		if !sess.HasGroupSelected() {
			return Article{}, false, conn.WriteLine("412 No newsgroup selected")
		}
		art, err := eng.Backend.ArticleByNumber(ctx, *sess.Group, n)
		var naf *ArticleNotFound
		if errors.As(err, &naf) {
			return notFound()
		}
		if err != nil {
			return Article{}, false, writeBackendError(conn, err)
		}
		return art, true, nil
	}

	art, err := eng.Backend.ArticleByMessageID(ctx, arg)
	var naf *ArticleNotFound
	if errors.As(err, &naf) {
		return notFoundMsgID()
	}
	if err != nil {
		return Article{}, false, writeBackendError(conn, err)
	}
	return art, true, nil
}

func headerLines(info ArticleInfo) []string {
	lines := []string{
		"From: " + info.From,
		"Subject: " + info.Subject,
		"Date: " + rfc5322Date(info),
		"Message-ID: " + info.MessageID,
	}
	if info.References != "" {
		lines = append(lines, "References: "+info.References)
	}
	info.Headers.Range(func(name, value string) {
		lines = append(lines, name+": "+value)
	})
	return lines
}

func writeArticleResponse(conn *Conn, verb string, art Article) error {
	head := fmt.Sprintf("%d %s", art.Info.Number, art.Info.MessageID)
	switch verb {
	case "ARTICLE":
		if err := conn.WriteLine(status(220, head)); err != nil {
			return err
		}
		lines := append(headerLines(art.Info), "")
		lines = append(lines, strings.Split(art.Body, "\n")...)
		return conn.WriteMultiline(lines)
	case "HEAD":
		if err := conn.WriteLine(status(221, head)); err != nil {
			return err
		}
		return conn.WriteMultiline(headerLines(art.Info))
	case "BODY":
		if err := conn.WriteLine(status(222, head)); err != nil {
			return err
		}
		return conn.WriteMultiline(strings.Split(art.Body, "\n"))
	case "STAT":
		return conn.WriteLine(status(223, head))
	}
	return fmt.Errorf("nntp: unreachable article verb %q", verb)
}

func handleOver(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if !sess.HasGroupSelected() {
		return false, conn.WriteLine("412 No newsgroup selected")
	}
	group := *sess.Group
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	if arg == "" {
		if !sess.HasCurrentArticle() {
			return false, conn.WriteLine("420 No current article selected")
		}
		info, err := eng.Backend.ArticleInfoByNumber(ctx, group, sess.CurrentArticle)
		var naf *ArticleNotFound
		if errors.As(err, &naf) {
			return false, conn.WriteLine("420 No current article selected")
		}
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		if err := conn.WriteLine("224 Overview information follows (multi-line)"); err != nil {
			return false, err
		}
		return false, conn.WriteMultiline([]string{FormatOverview(info)})
	}

	if r, ok := ParseRange(arg); ok {
		hi := group.High
		if r.High != nil {
			hi = *r.High
		}
		infos, err := eng.Backend.ArticleInfosInRange(ctx, group, r.Low, hi)
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		if err := conn.WriteLine("224 Overview information follows (multi-line)"); err != nil {
			return false, err
		}
		lines := make([]string, len(infos))
		for i, info := range infos {
			lines[i] = FormatOverview(info)
		}
		return false, conn.WriteMultiline(lines)
	}

	info, err := eng.Backend.ArticleInfoByMessageID(ctx, arg)
	var naf *ArticleNotFound
	if errors.As(err, &naf) {
		return false, conn.WriteLine("430 No article with that message-id")
	}
	if err != nil {
		return false, writeBackendError(conn, err)
	}
	if err := conn.WriteLine("224 Overview information follows (multi-line)"); err != nil {
		return false, err
	}
	return false, conn.WriteMultiline([]string{FormatOverview(info)})
}

func handleHdr(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) == 0 {
		return false, conn.WriteLine("501 Syntax Error")
	}
	field := args[0]
	var arg string
	if len(args) > 1 {
		arg = args[1]
	}

	if arg == "" {
		if !sess.HasGroupSelected() {
			return false, conn.WriteLine("412 No newsgroup selected")
		}
		if !sess.HasCurrentArticle() {
			return false, conn.WriteLine("420 No current article selected")
		}
		info, err := eng.Backend.ArticleInfoByNumber(ctx, *sess.Group, sess.CurrentArticle)
		var naf *ArticleNotFound
		if errors.As(err, &naf) {
			return false, conn.WriteLine("423 No article with that number")
		}
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		value, _ := HeaderValue(info, field)
		if err := conn.WriteLine("225 Headers follow(multi-line)"); err != nil {
			return false, err
		}
		return false, conn.WriteMultiline([]string{FormatHdr(strconv.FormatInt(info.Number, 10), value)})
	}

	if r, ok := ParseRange(arg); ok {
		if !sess.HasGroupSelected() {
			return false, conn.WriteLine("412 No newsgroup selected")
		}
		group := *sess.Group
		hi := group.High
		if r.High != nil {
			hi = *r.High
		}
		infos, err := eng.Backend.ArticleInfosInRange(ctx, group, r.Low, hi)
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		if len(infos) == 0 {
			return false, conn.WriteLine("423 No articles in that range")
		}
		if err := conn.WriteLine("225 Headers follow(multi-line)"); err != nil {
			return false, err
		}
		lines := make([]string, len(infos))
		for i, info := range infos {
			value, _ := HeaderValue(info, field)
			lines[i] = FormatHdr(strconv.FormatInt(info.Number, 10), value)
		}
		return false, conn.WriteMultiline(lines)
	}

	info, err := eng.Backend.ArticleInfoByMessageID(ctx, arg)
	var naf *ArticleNotFound
	if errors.As(err, &naf) {
		return false, conn.WriteLine("430 No article with that message-id")
	}
	if err != nil {
		return false, writeBackendError(conn, err)
	}
	value, _ := HeaderValue(info, field)
	if err := conn.WriteLine("225 Headers follow(multi-line)"); err != nil {
		return false, err
	}
	return false, conn.WriteMultiline([]string{FormatHdr(info.MessageID, value)})
}

func handleNewnews(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) < 3 {
		return false, conn.WriteLine("501 Syntax Error")
	}
	wildmat, dateStr, timeStr := args[0], args[1], args[2]
	since, err := ParseDateTime(dateStr, timeStr)
	if err != nil {
		return false, conn.WriteLine("501 Syntax Error")
	}

	ids, err := eng.Backend.NewNews(ctx, wildmat, since)
	if errors.Is(err, ErrNotSupported) {
		ids, err = defaultNewNews(eng, ctx, wildmat, since)
	}
	if err != nil {
		return false, writeBackendError(conn, err)
	}
	if err := conn.WriteLine("230 list of new articles by message-id follows"); err != nil {
		return false, err
	}
	return false, conn.WriteMultiline(ids)
}

func defaultNewNews(eng *Engine, ctx context.Context, wildmat string, since time.Time) ([]string, error) {
	groups, err := eng.Backend.Groups(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, g := range groups {
		if g.Name != wildmat {
			continue
		}
		infos, err := eng.Backend.ArticleInfosInRange(ctx, g, g.Low, g.High)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if info.Date.Unix() >= since.Unix() {
				ids = append(ids, info.MessageID)
			}
		}
	}
	return ids, nil
}

func handleNewgroups(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) < 2 {
		return false, conn.WriteLine("501 Syntax Error")
	}
	since, err := ParseDateTime(args[0], args[1])
	if err != nil {
		return false, conn.WriteLine("501 Syntax Error")
	}

	groups, err := eng.Backend.NewGroups(ctx, since)
	if errors.Is(err, ErrNotSupported) {
		groups, err = defaultNewGroups(eng, ctx, since)
	}
	if err != nil {
		return false, writeBackendError(conn, err)
	}
	if err := conn.WriteLine("231 list of new newsgroups follows"); err != nil {
		return false, err
	}
	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = fmt.Sprintf("%s %d %d %d", g.Name, g.High, g.Low, g.Number)
	}
	return false, conn.WriteMultiline(lines)
}

func defaultNewGroups(eng *Engine, ctx context.Context, since time.Time) ([]Group, error) {
	all, err := eng.Backend.Groups(ctx)
	if err != nil {
		return nil, err
	}
	var out []Group
	for _, g := range all {
		if g.Created.Unix() >= since.Unix() {
			out = append(out, g)
		}
	}
	return out, nil
}

func handlePost(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if !eng.canPost(ctx, sess) {
		return false, conn.WriteLine("440 Posting not permitted")
	}
	if err := conn.WriteLine("340 Input article; end with <CR-LF>.<CR-LF>"); err != nil {
		return false, err
	}
	lines, err := conn.ReadMultiline()
	if err != nil {
		var de *DataError
		if errors.As(err, &de) {
			return true, conn.WriteLine("205 Connection closing")
		}
		return false, err
	}
	if err := eng.Backend.Post(ctx, lines); err != nil {
		var pe *PostError
		if errors.As(err, &pe) {
			return false, conn.WriteLine("441 Posting failed: " + pe.Reason)
		}
		return false, writeBackendError(conn, err)
	}
	return false, conn.WriteLine("240 Article received OK")
}

func handleAuthinfo(eng *Engine, sess *Session, conn *Conn, ctx context.Context, args []string, secure bool) (bool, error) {
	if len(args) < 2 {
		return false, conn.WriteLine("501 Syntax Error")
	}
	if !eng.Backend.AuthRequired(ctx) || sess.AuthState == AuthAuthenticated {
		return false, conn.WriteLine("502 Command unavailable")
	}
	sub := strings.ToUpper(args[0])
	value := strings.Join(args[1:], " ")

	switch sub {
	case "USER":
		sess.Username = value
		sess.AuthState = AuthUserPending
		return false, conn.WriteLine("381 Enter passphrase")
	case "PASS":
		if sess.AuthState != AuthUserPending {
			return false, conn.WriteLine("482 Authentication commands issued out of sequence")
		}
		token, err := eng.Backend.AuthInfo(ctx, sess.Username, value)
		var ae *AuthenticationError
		if errors.As(err, &ae) {
			return false, conn.WriteLine("481 " + ae.Reason)
		}
		if err != nil {
			return false, writeBackendError(conn, err)
		}
		sess.AuthState = AuthAuthenticated
		sess.Authenticated = token
		return false, conn.WriteLine("281 Authentication accepted")
	default:
		return false, conn.WriteLine("501 Syntax Error")
	}
}

// writeBackendError maps an unanticipated Backend error to the generic
// facility-unavailable response. Specific error types are always handled by
// their call sites before falling through here.
func writeBackendError(conn *Conn, err error) error {
	return conn.WriteLine("503 " + err.Error())
}
