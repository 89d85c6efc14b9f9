package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orizon-lang/derivcheck/internal/cli"
	"github.com/orizon-lang/derivcheck/internal/server"
)

var serveInfo = cli.CommandInfo{
	Name:        "serve",
	Usage:       "derivcheck serve [OPTIONS]",
	Description: "Serve the checker over HTTP/3",
	Examples: []string{
		"derivcheck serve --addr :8443 --cert cert.pem --key key.pem",
	},
	Flags: []cli.FlagInfo{
		{Name: "addr", Usage: "UDP address to listen on", Default: "localhost:8443"},
		{Name: "cert", Usage: "TLS certificate file; a self-signed one is generated when empty"},
		{Name: "key", Usage: "TLS key file"},
	},
}

func (a *app) serve(args []string) int {
	var g globalFlags
	fs := a.flagSet(serveInfo)
	g.register(fs)
	addr := fs.String("addr", "", "UDP address to listen on")
	cert := fs.String("cert", "", "TLS certificate file")
	key := fs.String("key", "", "TLS key file")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	e, err := g.load(a)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}

	sc := e.cfg.Serve
	sc.Addr = firstNonEmpty(*addr, sc.Addr, "localhost:8443")
	sc.Cert = firstNonEmpty(*cert, sc.Cert)
	sc.Key = firstNonEmpty(*key, sc.Key)

	tlsCfg, err := serverTLS(e, sc)
	if err != nil {
		e.logger.Error("%v", err)
		return 2
	}

	h := server.NewHandler(e.reg, server.Options{Language: e.cfg.Language, Ruleset: e.cfg.Ruleset, Logger: e.logger})
	srv := server.NewHTTP3Server(sc.Addr, tlsCfg, h)
	bound, err := srv.Start()
	if err != nil {
		e.logger.Error("%v", err)
		return 2
	}
	fmt.Fprintf(a.stdout, "serving on https://%s (HTTP/3)\n", bound)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	e.logger.Info("shutting down")
	if err := srv.Stop(); err != nil {
		e.logger.Error("%v", err)
		return 1
	}
	return 0
}

// serverTLS loads the configured certificate, or generates one for the
// listen host when none is configured
func serverTLS(e *env, sc cli.ServeConfig) (*tls.Config, error) {
	switch {
	case sc.Cert != "" && sc.Key != "":
		return server.LoadTLSConfig(sc.Cert, sc.Key)
	case sc.Cert != "" || sc.Key != "":
		return nil, errors.New("--cert and --key must be given together")
	}
	host, _, err := net.SplitHostPort(sc.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", sc.Addr, err)
	}
	if host == "" {
		host = "localhost"
	}
	e.logger.Warn("no certificate configured, using a self-signed certificate for %s", host)
	return server.GenerateSelfSignedTLS([]string{host}, 7*24*time.Hour)
}
