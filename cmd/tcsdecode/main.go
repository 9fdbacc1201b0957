// Command tcsdecode prints the decoded form of TCF consent strings.
//
//	tcsdecode [-format json|yaml] <consent>...
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prebid/tcstring/vendorconsent"
	"gopkg.in/yaml.v2"
)

type record struct {
	Version uint8                 `json:"version" yaml:"version"`
	Consent vendorconsent.Consent `json:"consent" yaml:"consent"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run decodes every argument and returns the process exit status. Strings that fail to decode
// are reported on stderr and do not stop the remaining ones.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("tcsdecode", flag.ContinueOnError)
	flags.SetOutput(stderr)
	format := flags.String("format", "json", "output format: json or yaml")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	var write func(record) error
	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		write = func(r record) error { return enc.Encode(r) }
	case "yaml":
		write = func(r record) error {
			out, err := yaml.Marshal(r)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "---\n%s", out)
			return err
		}
	default:
		fmt.Fprintf(stderr, "unknown format %q. Use json or yaml.\n", *format)
		return 2
	}

	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: tcsdecode [-format json|yaml] <consent>...")
		return 2
	}

	status := 0
	for _, consent := range flags.Args() {
		parsed, err := vendorconsent.ParseString(consent)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", consent, err)
			status = 1
			continue
		}
		if err := write(record{Version: parsed.Version(), Consent: parsed}); err != nil {
			fmt.Fprintf(stderr, "%s: failed to write output: %v\n", consent, err)
			status = 1
		}
	}
	return status
}
