// Package main is a small command-line demo of the envmask engine: it
// reads a dotenv file, masks it according to an optional policy
// configuration file, and prints the masked result to stdout.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/envmask"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	engine := envmask.New(envmask.WithSkipComments(opts.SkipComments))

	if opts.ConfigPath != "" {
		if err := engine.LoadConfig(opts.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", opts.ConfigPath, err)
			return 1
		}
		if opts.SkipComments {
			engine.SetSkipComments(true)
		}
	}

	if opts.ListModes {
		for _, name := range engine.ListModes() {
			fmt.Println(name)
		}
		return 0
	}

	input, err := os.ReadFile(opts.InputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", opts.InputPath, err)
		return 1
	}

	result, err := engine.Generate(input, opts.InputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprint(os.Stdout, string(applyMasks(input, result.Masks)))
	return 0
}

// applyMasks rewrites input, replacing each record's [ValueStart, ValueEnd)
// span with its Mask text, leaving everything outside masked spans
// untouched. Records are assumed in ascending ValueStart order, per the
// engine's emission invariant.
func applyMasks(input []byte, records []envmask.MaskRecord) []byte {
	out := make([]byte, 0, len(input))
	cursor := 0
	for _, r := range records {
		out = append(out, input[cursor:r.ValueStart]...)
		out = append(out, r.Mask...)
		cursor = r.ValueEnd
	}
	out = append(out, input[cursor:]...)
	return out
}

type options struct {
	InputPath    string
	ConfigPath   string
	SkipComments bool
	ListModes    bool
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to policy/mode configuration file (TOML)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to policy/mode configuration file (shorthand)")
	flag.BoolVar(&opts.SkipComments, "skip-comments", false, "Leave comment-shaped entries unmasked")
	flag.BoolVar(&opts.ListModes, "list-modes", false, "List registered mode names and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "envmaskdump - mask secret-shaped values in a dotenv file\n\n")
		fmt.Fprintf(os.Stderr, "Usage: envmaskdump [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() > 0 {
		opts.InputPath = flag.Arg(0)
	}

	if opts.InputPath == "" && !opts.ListModes {
		flag.Usage()
		os.Exit(1)
	}

	return opts
}
