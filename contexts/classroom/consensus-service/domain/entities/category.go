package entities

import "strings"

// DefaultCategories is the category set offered by the classroom client.
var DefaultCategories = []string{
	"DEMO",
	"PRESENTATION",
	"PAPER PRESENTATION",
	"SMART CONTRACT PROTOCOL",
}

// Categories is an immutable, ordered set of accepted presentation categories.
type Categories struct {
	ordered []string
	allowed map[string]struct{}
}

func NewCategories(names []string) Categories {
	c := Categories{allowed: make(map[string]struct{}, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := c.allowed[name]; ok {
			continue
		}
		c.allowed[name] = struct{}{}
		c.ordered = append(c.ordered, name)
	}
	return c
}

// Resolve returns the canonical category for raw. Matching is exact after
// trimming surrounding whitespace.
func (c Categories) Resolve(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if _, ok := c.allowed[name]; !ok {
		return "", false
	}
	return name, true
}

func (c Categories) Names() []string {
	return append([]string(nil), c.ordered...)
}

func (c Categories) Len() int {
	return len(c.ordered)
}
