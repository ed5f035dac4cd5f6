// Command slpmon is a live terminal dashboard over a directory agent's
// registry.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"slpv2/slp"
)

func main() {
	var (
		ipAddrsFlag = flag.String("ip-addrs", "127.0.0.1", "comma-separated local IPv4 addresses to bind and join the multicast group on")
		mcastPort   = flag.Int("mcast-port", 427, "SLPv2 multicast port")
		mcastGroup  = flag.String("mcast-group", "239.255.255.253", "SLPv2 multicast group")
		scope       = flag.String("scope", "DEFAULT", "scope this directory agent accepts registrations and requests for")
		logLevel    = flag.String("log-level", "info", "debug|info|warn|error")
		refresh     = flag.Duration("refresh", 2*time.Second, "table refresh interval")
	)
	flag.Parse()

	// Log to a file instead of stderr so output doesn't corrupt the TUI
	// alt screen.
	logFile, err := os.OpenFile("slpmon.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	level := parseLogLevel(*logLevel)
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})).With("component", "slpmon")

	ips, err := parseIPAddrs(*ipAddrsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slpmon: %v\n", err)
		os.Exit(1)
	}
	group := net.ParseIP(*mcastGroup)
	if group == nil {
		fmt.Fprintf(os.Stderr, "slpmon: invalid multicast group %q\n", *mcastGroup)
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
		fmt.Fprintf(os.Stderr, "slpmon: failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	logger.Info("dashboard daemon started", "interfaces", daemon.Interfaces(), "mcast_group", group, "mcast_port", *mcastPort, "scope", *scope)

	m := newModel(daemon, *refresh)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
	}

	if err := daemon.Close(); err != nil {
		logger.Error("error during shutdown", "err", err)
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
