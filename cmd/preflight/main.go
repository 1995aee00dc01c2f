// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/pingmore/internal/config"
)

const pingGroupRange = "/proc/sys/net/ipv4/ping_group_range"

func main() {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	// Unprivileged ICMP sockets.
	if raw, err := os.ReadFile(pingGroupRange); err != nil {
		warn("cannot read " + pingGroupRange + " (not Linux?); icmp probes may need privileges.")
	} else {
		gid := os.Getgid()
		in, err := groupInRange(string(raw), gid)
		switch {
		case err != nil:
			warn(err.Error())
		case in:
			ok(fmt.Sprintf("gid %d is inside ping_group_range (%s)", gid, strings.TrimSpace(string(raw))))
		default:
			fail(fmt.Sprintf("gid %d is outside ping_group_range (%s); icmp probes will fail. Try: sysctl -w net.ipv4.ping_group_range=\"0 2147483647\"",
				gid, strings.TrimSpace(string(raw))))
		}
	}

	// API environment.
	cfg, err := config.FromEnv()
	for _, e := range multierr.Errors(err) {
		fail("config: " + e.Error())
	}

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	if admin == "" {
		warn("ADMIN_API_KEYS is empty (DELETE /api/probes will 403).")
	}
	if pub == "" && admin == "" {
		warn("PUBLIC_API_KEYS is empty (probe routes will 401 without an admin key).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if os.Getenv("ADDR") == "" {
		warn("ADDR is empty; default " + cfg.Addr + " will be used.")
	} else {
		ok("ADDR=" + cfg.Addr)
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin is allowed by CORS.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}

// groupInRange parses the two-number ping_group_range format ("lo hi") and
// reports whether gid falls inside it. The kernel default "1 0" admits nobody.
func groupInRange(content string, gid int) (bool, error) {
	fields := strings.Fields(content)
	if len(fields) != 2 {
		return false, fmt.Errorf("unexpected ping_group_range %q", strings.TrimSpace(content))
	}
	lo, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return false, fmt.Errorf("ping_group_range low bound: %w", err)
	}
	hi, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return false, fmt.Errorf("ping_group_range high bound: %w", err)
	}
	g := int64(gid)
	return lo <= g && g <= hi, nil
}
