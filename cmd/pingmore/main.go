package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hamed0406/pingmore/internal/domain"
	"github.com/hamed0406/pingmore/internal/logging"
	"github.com/hamed0406/pingmore/internal/probe"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	args, err := parseArgs(argv, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	req, err := domain.Validate(args)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return exitFail
	}

	logger, err := logging.NewOptional(os.Getenv("LOG_DIR"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(stderr, "logging:", err)
		return exitFail
	}
	defer logger.Sync()

	res := probe.NewDispatcher(logger).Run(req)
	fmt.Fprintln(stdout, formatResult(res))
	if res.Success() {
		return exitOK
	}
	return exitFail
}

// parseArgs accepts flags on either side of the target.
func parseArgs(argv []string, stderr io.Writer) (domain.Args, error) {
	var a domain.Args

	fs := flag.NewFlagSet("pingmore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pingmore [flags] <target-ip> [flags]")
		fs.PrintDefaults()
	}
	for _, name := range []string{"k", "kind"} {
		fs.StringVar(&a.Kind, name, "icmp", "probe kind: dns, icmp, tcp or udp")
	}
	for _, name := range []string{"t", "timeout"} {
		fs.StringVar(&a.Timeout, name, "", "timeout in seconds, fractions allowed")
	}
	for _, name := range []string{"p", "port"} {
		fs.StringVar(&a.Port, name, "", "target port (tcp, udp, dns)")
	}
	fs.StringVar(&a.Payload, "payload", "", "udp payload as hex (default 00)")

	if err := fs.Parse(argv); err != nil {
		return a, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return a, errors.New("missing target")
	}
	a.Target = fs.Arg(0)

	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return a, err
	}
	if fs.NArg() > 0 {
		return a, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return a, nil
}

func formatResult(r probe.CheckResult) string {
	seconds := r.Elapsed.Seconds()
	millis := strconv.FormatFloat(math.Round(seconds*1000), 'f', -1, 64)
	took := fmt.Sprintf("in %s ms (%s s)", millis, sci(seconds))

	switch r.Outcome {
	case probe.Success:
		return "success " + took
	case probe.Timeout:
		return "timeout " + took
	}
	return "error " + took + ": " + r.Message()
}

// sci formats f with three decimals and a bare exponent, e.g. 1.234e-3.
func sci(f float64) string {
	s := strconv.FormatFloat(f, 'e', 3, 64)
	i := strings.IndexByte(s, 'e')
	exp, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s
	}
	return s[:i+1] + strconv.Itoa(exp)
}
