package delegate

import (
	"fmt"
	"sort"
)

// BuildArgv renders a delegated call as
// subcommand [args...] [--flag | --key value ...].
// Option keys are emitted in sorted order. true becomes a bare flag; false,
// nil and empty strings are omitted; slices repeat --key value per element.
func BuildArgv(subcommand string, args []string, options map[string]any) []string {
	argv := make([]string, 0, 1+len(args)+2*len(options))
	argv = append(argv, subcommand)
	argv = append(argv, args...)

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		flag := "--" + k
		switch v := options[k].(type) {
		case nil:
		case bool:
			if v {
				argv = append(argv, flag)
			}
		case string:
			if v != "" {
				argv = append(argv, flag, v)
			}
		case []string:
			for _, item := range v {
				argv = append(argv, flag, item)
			}
		case []any:
			for _, item := range v {
				if item == nil {
					continue
				}
				argv = append(argv, flag, fmt.Sprint(item))
			}
		default:
			argv = append(argv, flag, fmt.Sprint(v))
		}
	}
	return argv
}
