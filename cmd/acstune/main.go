// acstune manages named tunables presets (spec §3.5) as YAML files for
// bench and SITL use — it never talks to the running control loop
// directly, since the spec's §6.9 CLI surface keeps live tunable
// setters off the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nyx-sat/acsd/internal/tunables"
)

func main() {
	show := pflag.BoolP("show", "s", false, "print the default preset and exit")
	out := pflag.StringP("write", "w", "", "write the default preset to this path")
	in := pflag.StringP("load", "l", "", "load and validate a preset file")
	pflag.Parse()

	switch {
	case *show:
		p := tunables.New().ToPreset()
		data, err := yaml.Marshal(p)
		if err != nil {
			fail(err)
		}
		fmt.Print(string(data))

	case *out != "":
		p := tunables.New().ToPreset()
		if err := tunables.SavePreset(*out, p); err != nil {
			fail(err)
		}
		fmt.Printf("wrote default preset to %s\n", *out)

	case *in != "":
		p, err := tunables.LoadPreset(*in)
		if err != nil {
			fail(err)
		}
		t := tunables.New()
		t.ApplyPreset(p)
		fmt.Printf("preset %s loaded and clamp-validated OK\n", *in)
		data, _ := yaml.Marshal(t.ToPreset())
		fmt.Print(string(data))

	default:
		pflag.Usage()
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "acstune: %v\n", err)
	os.Exit(1)
}
