package base

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// FlagSet wraps a flag.FlagSet and renders its flags for command help.
type FlagSet struct {
	*flag.FlagSet

	aliases map[string]string
}

// NewFlagSet returns a FlagSet that reports parse errors to the caller
// instead of printing usage.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(io.Discard)
	return &FlagSet{FlagSet: f, aliases: map[string]string{}}
}

// StringVarP defines a string flag with a one letter alias.
func (f *FlagSet) StringVarP(p *string, name, short, value, usage string) {
	f.StringVar(p, name, value, usage)
	f.StringVar(p, short, value, "Alias of -"+name)
	f.aliases[short] = name
}

// Help renders the flags, one block per flag, sorted by name.
func (f *FlagSet) Help() string {
	var flags []*flag.Flag
	f.VisitAll(func(fl *flag.Flag) {
		if _, ok := f.aliases[fl.Name]; ok {
			return
		}
		flags = append(flags, fl)
	})
	if len(flags) == 0 {
		return ""
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })

	shorts := map[string]string{}
	for short, long := range f.aliases {
		shorts[long] = short
	}

	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	for _, fl := range flags {
		name := "-" + fl.Name
		if short, ok := shorts[fl.Name]; ok {
			name = fmt.Sprintf("-%s, -%s", short, fl.Name)
		}
		b.WriteString("\n  " + name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			b.WriteString("=" + fl.DefValue)
		}
		b.WriteString("\n      " + fl.Usage + "\n")
	}
	return b.String()
}
