package service

import "strings"

// SubjectCatalog is the institution's list of subjects attendance can be taken for.
type SubjectCatalog struct {
	subjects []string
	index    map[string]struct{}
}

// NewSubjectCatalog keeps the first occurrence of each non-blank subject in order.
func NewSubjectCatalog(subjects []string) *SubjectCatalog {
	c := &SubjectCatalog{index: make(map[string]struct{}, len(subjects))}
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := c.index[s]; dup {
			continue
		}
		c.index[s] = struct{}{}
		c.subjects = append(c.subjects, s)
	}
	return c
}

// List returns a copy of the subjects in configured order.
func (c *SubjectCatalog) List() []string {
	out := make([]string, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Contains reports whether subject is in the catalogue. Matching is exact.
func (c *SubjectCatalog) Contains(subject string) bool {
	_, ok := c.index[subject]
	return ok
}
