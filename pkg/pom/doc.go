// Package pom reads Maven POM documents and resolves their inherited
// properties.
//
// # Placeholders
//
// [Resolve] substitutes whole-value placeholders: ${project.parent.X},
// ${project.X} and ${name}. It is pure and never fails. A placeholder that
// cannot be substituted is returned unchanged so callers can see it.
//
// # Inheritance
//
// [Walker.Accumulate] climbs the <parent> chain, fetching each parent POM
// through a [Fetcher]. Each level produces a new [Properties] value; the
// closest declaration of a key wins:
//
//	child:  {a: 1}
//	parent: {a: 2, b: 3}
//	result: {a: 1, b: 3}
//
// Missing, unparsable or malformed parents end the walk early with the
// properties gathered so far.
package pom
