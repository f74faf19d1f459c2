// Package identity resolves shared vendor identities. Some vendors operate
// under more than one login; payroll and sales aggregation must treat the
// whole group as one person. Groups come from configuration, never from
// hardcoded names.
package identity

import "strings"

// Resolver maps usernames to their identity group. The zero value (or an
// empty spec) resolves every username to itself.
type Resolver struct {
	canonical map[string]string   // alias → canonical username
	groups    map[string][]string // canonical → all usernames in the group
}

// Parse builds a Resolver from the IDENTITY_GROUPS config string:
// "canonical1:alias1:alias2;canonical2:alias3". Whitespace around names is
// trimmed; empty segments are skipped.
func Parse(spec string) *Resolver {
	r := &Resolver{
		canonical: make(map[string]string),
		groups:    make(map[string][]string),
	}
	for _, group := range strings.Split(spec, ";") {
		names := strings.Split(group, ":")
		var members []string
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				members = append(members, n)
			}
		}
		if len(members) < 2 {
			continue
		}
		head := members[0]
		r.groups[head] = members
		for _, m := range members {
			r.canonical[m] = head
		}
	}
	return r
}

// Canonical returns the canonical username for the given login. Usernames
// outside any group are their own canonical identity.
func (r *Resolver) Canonical(username string) string {
	if r == nil || r.canonical == nil {
		return username
	}
	if head, ok := r.canonical[username]; ok {
		return head
	}
	return username
}

// Group returns every username sharing the identity, including the given
// one. Unknown usernames yield a single-element group.
func (r *Resolver) Group(username string) []string {
	head := r.Canonical(username)
	if r != nil && r.groups != nil {
		if members, ok := r.groups[head]; ok {
			return members
		}
	}
	return []string{username}
}

// SameIdentity reports whether two usernames belong to the same person.
func (r *Resolver) SameIdentity(a, b string) bool {
	return r.Canonical(a) == r.Canonical(b)
}
