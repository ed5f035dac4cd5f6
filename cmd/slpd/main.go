// Command slpd runs an SLPv2 directory agent.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"slpv2/slp"
)

func main() {
	var (
		ipAddrsFlag = flag.String("ip-addrs", "127.0.0.1", "comma-separated local IPv4 addresses to bind and join the multicast group on")
		mcastPort   = flag.Int("mcast-port", 427, "SLPv2 multicast port")
		mcastGroup  = flag.String("mcast-group", "239.255.255.253", "SLPv2 multicast group")
		scope       = flag.String("scope", "DEFAULT", "scope this directory agent accepts registrations and requests for")
		logLevel    = flag.String("log-level", "info", "debug|info|warn|error")
	)
	flag.Parse()

	level := parseLogLevel(*logLevel)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("component", "slpd")

	ips, err := parseIPAddrs(*ipAddrsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slpd: %v\n", err)
		os.Exit(1)
	}

	group := net.ParseIP(*mcastGroup)
	if group == nil {
		fmt.Fprintf(os.Stderr, "slpd: invalid multicast group %q\n", *mcastGroup)
		os.Exit(1)
	}

	daemon, err := slp.NewDaemon(slp.DaemonConfig{
		IPAddrs:    ips,
		McastPort:  *mcastPort,
		McastGroup: group,
		Scope:      *scope,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to start daemon", "err", err)
		os.Exit(1)
	}

	logger.Info("directory agent started", "interfaces", daemon.Interfaces(), "mcast_group", group, "mcast_port", *mcastPort, "scope", *scope)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := daemon.Close(); err != nil {
		logger.Error("error during shutdown", "err", err)
		os.Exit(1)
	}
}

func parseIPAddrs(s string) ([]net.IP, error) {
	var ips []net.IP
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ip := net.ParseIP(part)
		if ip == nil {
			return nil, fmt.Errorf("invalid ip address %q", part)
		}
		ips = append(ips, ip.To4())
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no ip addresses given")
	}
	return ips, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
