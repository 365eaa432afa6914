package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/tpaint/pkg/stdimg"
)

// Tooltip renders the help shown before a command's arguments are prompted.
func Tooltip(c stdimg.CommandSpec) string {
	var sb strings.Builder
	sb.WriteString(c.Usage)
	sb.WriteString("\n  ")
	if c.Description != "" {
		sb.WriteString(c.Description)
	} else {
		sb.WriteString("No description")
	}
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "\n  %s (%s, %s)", a.Name, a.Type, req)
		if a.Default != "" {
			fmt.Fprintf(&sb, " default %s", a.Default)
		}
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
	}
	return sb.String()
}

// NormalizeArgs trims and type-checks raw prompt answers. Empty optional
// answers take the declared default; trailing empty optionals are dropped so
// the command sees its own defaults.
func NormalizeArgs(c stdimg.CommandSpec, raw []string) ([]string, error) {
	out := make([]string, 0, len(c.Args))
	for i, a := range c.Args {
		v := ""
		if i < len(raw) {
			v = strings.TrimSpace(raw[i])
		}
		if v == "" {
			if a.Required {
				return nil, fmt.Errorf("%s is required", a.Name)
			}
			v = a.Default
		}
		switch a.Type {
		case "int":
			if v != "" {
				if _, err := strconv.Atoi(v); err != nil {
					return nil, fmt.Errorf("%s: invalid integer %q", a.Name, v)
				}
			}
		case "float":
			if v != "" {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					return nil, fmt.Errorf("%s: invalid number %q", a.Name, v)
				}
			}
		}
		out = append(out, v)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}
