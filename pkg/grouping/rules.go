package grouping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattsolo1/grove-slots/pkg/models"
)

// NoValue is the group that collects records a rule yields no value for.
const NoValue = "(none)"

// Rule maps a record to the groups it belongs to. Returning several values
// places the record in several groups at once.
type Rule struct {
	Name   string
	Values func(r models.Record) []string
}

// Option marks a tree node as produced by a grouping rule. It is stored in
// the node's Extra field.
type Option struct {
	Rule  string
	Value string
}

// GroupOptionID identifies the option across rebuilds.
func (o Option) GroupOptionID() string { return o.Rule + ":" + o.Value }

// ByTag groups by every tag of a record.
func ByTag() Rule {
	return Rule{Name: "tag", Values: func(r models.Record) []string {
		out := make([]string, 0, len(r.Tags))
		for _, t := range r.Tags {
			out = append(out, strings.ToLower(t))
		}
		return out
	}}
}

// ByKind groups by the record kind.
func ByKind() Rule {
	return Rule{Name: "kind", Values: func(r models.Record) []string {
		if r.Kind == "" {
			return nil
		}
		return []string{string(r.Kind)}
	}}
}

// ByMonth groups by creation month (YYYY-MM).
func ByMonth() Rule {
	return Rule{Name: "month", Values: func(r models.Record) []string {
		if r.CreatedAt.IsZero() {
			return nil
		}
		return []string{r.CreatedAt.Format("2006-01")}
	}}
}

// ByDir groups by the top-level directory of the record path.
func ByDir() Rule {
	return Rule{Name: "dir", Values: func(r models.Record) []string {
		dir := r.Dir()
		if dir == "" {
			return nil
		}
		top, _, _ := strings.Cut(dir, "/")
		return []string{top}
	}}
}

var builtin = map[string]func() Rule{
	"tag":   ByTag,
	"kind":  ByKind,
	"month": ByMonth,
	"dir":   ByDir,
}

// Names lists the built-in rule names.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a comma separated list of built-in rule names, outermost
// first, e.g. "kind,tag".
func Lookup(spec string) ([]Rule, error) {
	var rules []Rule
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mk, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("unknown grouping rule %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		rules = append(rules, mk())
	}
	return rules, nil
}
