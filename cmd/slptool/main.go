// Command slptool is a one-shot SLPv2 client: register, deregister,
// findsrvs, or findattrs against the multicast group.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"slpv2/slp"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: slptool [flags] <command> <args...>

commands:
  register    <service-type> <url> [attr-list] [lifetime]
  deregister  <url>
  findsrvs    <service-type>
  findattrs   <url>

flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		ipAddrsFlag = flag.String("ip-addrs", "127.0.0.1", "comma-separated local IPv4 addresses to send through")
		mcastPort   = flag.Int("mcast-port", 427, "SLPv2 multicast port")
		mcastGroup  = flag.String("mcast-group", "239.255.255.253", "SLPv2 multicast group")
		scope       = flag.String("scope", "DEFAULT", "scope to register/query under")
		logLevel    = flag.String("log-level", "warn", "debug|info|warn|error")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	level := parseLogLevel(*logLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("component", "slptool")

	ips, err := parseIPAddrs(*ipAddrsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slptool: %v\n", err)
		os.Exit(1)
	}
	group := net.ParseIP(*mcastGroup)
	if group == nil {
		fmt.Fprintf(os.Stderr, "slptool: invalid multicast group %q\n", *mcastGroup)
		os.Exit(1)
	}

	client := slp.NewClient(slp.ClientConfig{
		IPAddrs:    ips,
		McastGroup: group,
		McastPort:  *mcastPort,
		Scope:      *scope,
		Logger:     logger,
	})

	args := flag.Args()
	ctx := context.Background()

	var runErr error
	switch args[0] {
	case "register":
		runErr = runRegister(ctx, client, args[1:])
	case "deregister":
		runErr = runDeregister(ctx, client, args[1:])
	case "findsrvs":
		runErr = runFindSrvs(ctx, client, args[1:])
	case "findattrs":
		runErr = runFindAttrs(ctx, client, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "slptool: %v\n", runErr)
		os.Exit(1)
	}
}

func runRegister(ctx context.Context, c *slp.Client, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("register requires <service-type> <url> [attr-list] [lifetime]")
	}
	serviceType, url := args[0], args[1]
	attrList := ""
	if len(args) > 2 {
		attrList = args[2]
	}
	lifetime := uint16(65535)
	if len(args) > 3 {
		var v int
		if _, err := fmt.Sscanf(args[3], "%d", &v); err != nil {
			return fmt.Errorf("invalid lifetime %q", args[3])
		}
		lifetime = uint16(v)
	}
	if err := c.Register(ctx, serviceType, url, attrList, lifetime); err != nil {
		return err
	}
	fmt.Printf("%s - service is registered successfully\n", url)
	return nil
}

func runDeregister(ctx context.Context, c *slp.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("deregister requires <url>")
	}
	if err := c.Deregister(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("%s - service is deregistered successfully\n", args[0])
	return nil
}

func runFindSrvs(ctx context.Context, c *slp.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("findsrvs requires <service-type>")
	}
	res, err := c.FindSrvs(ctx, args[0])
	if err != nil {
		return err
	}
	for i, iface := range res.Interfaces {
		fmt.Printf("%s: %s\n", iface, strings.Join(res.URLs[i], ", "))
	}
	return nil
}

func runFindAttrs(ctx context.Context, c *slp.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("findattrs requires <url>")
	}
	attrs, err := c.FindAttrs(ctx, args[0], nil)
	if err != nil {
		return err
	}
	fmt.Println(attrs)
	return nil
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
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
