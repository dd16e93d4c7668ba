// Command nntpserver-demo runs a reader-mode NNTP server backed by one of
// the example backends in examples/. It is a demonstration shell, not part
// of the nntpserver library's public API.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/abusenet/nntpserver"
	"github.com/abusenet/nntpserver/examples/hnbackend"
	"github.com/abusenet/nntpserver/examples/staticbackend"
	"github.com/abusenet/nntpserver/nntpserver"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "nntpserver-demo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("nntpserver-demo", flag.ContinueOnError)
	cfgPath := flags.String("config", "", "path to config file (JSON or .env)")
	addr := flags.String("listen", "", "override listen address from config")
	backendName := flags.String("backend", "", "override backend name from config (static, hn)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.ListenAddress = *addr
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}

	logger := logrus.StandardLogger()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	backend, err := newBackend(cfg.Backend)
	if err != nil {
		return err
	}

	var tlsConfig *tls.Config
	if cfg.TLSCertFile != "" || cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("load TLS key pair: %w", err)
		}
		tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	ln, err := nntpserver.Listen("tcp", cfg.ListenAddress, tlsConfig)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddress, err)
	}

	opts := []nntpserver.Option{
		nntpserver.WithLogger(logger),
		nntpserver.WithRequireSecureAuth(cfg.RequireSecureAuth),
		nntpserver.WithIdleTimeout(cfg.idleTimeout()),
	}
	if cfg.MaxLineLength > 0 {
		opts = append(opts, nntpserver.WithMaxLineLength(cfg.MaxLineLength))
	}
	srv := nntpserver.New(backend, opts...)

	logger.WithFields(logrus.Fields{
		"listen_address": cfg.ListenAddress,
		"backend":        cfg.Backend,
		"tls":            tlsConfig != nil,
	}).Info("nntpserver-demo starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		ln.Close()
	}()

	if err := srv.Serve(ln); err != nil {
		select {
		case <-ctx.Done():
			return nil
		default:
			return err
		}
	}
	return nil
}

func newBackend(name string) (nntp.Backend, error) {
	switch name {
	case "", "static":
		return staticbackend.New(), nil
	case "hn":
		return hnbackend.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, name)
	}
}
