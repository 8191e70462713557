// Package cmd is the shared scaffold for command-line tools: common flags,
// log level wiring, and an error printer that knows pkg/errors stack
// traces.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrUsage marks argument errors so Main can exit 1 instead of 2.
var ErrUsage = errors.New("usage error")

type Cmd struct {
	Flags *flag.FlagSet

	// SetupFlags registers tool flags before parsing.
	SetupFlags func() error
	// Run gets the positional arguments left after flag parsing.
	Run func(args []string) error

	verbose, debug *bool
}

func New(name string) *Cmd {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	c := &Cmd{Flags: fs}
	c.verbose = fs.Bool("v", false, "info logging")
	c.debug = fs.Bool("vv", false, "debug logging")
	return c
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints err and, when pkg/errors carried one, its stack trace
// up to main.main.
func (c *Cmd) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	st, ok := errors.Cause(err).(stackTracer)
	if !ok {
		if st, ok = err.(stackTracer); !ok {
			return
		}
	}
	for _, f := range st.StackTrace() {
		fmt.Fprintf(os.Stderr, "  %s:%d %n()\n", f, f, f)
		if fmt.Sprintf("%n", f) == "main" {
			break
		}
	}
}

// Main parses argv, runs the tool, and exits: 0 on success, 1 on usage
// errors, 2 on analysis errors.
func (c *Cmd) Main(argv []string) {
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			c.PrintError(err)
			os.Exit(1)
		}
	}
	c.Flags.Parse(argv[1:])

	log.SetLevel(log.WarnLevel)
	if *c.verbose {
		log.SetLevel(log.InfoLevel)
	}
	if *c.debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := c.Run(c.Flags.Args()); err != nil {
		if errors.Cause(err) == ErrUsage {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			c.Flags.Usage()
			os.Exit(1)
		}
		c.PrintError(err)
		os.Exit(2)
	}
}
