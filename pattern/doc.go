// Package pattern defines the normalised pattern tree searched by starscan
// and the Validator that turns a JSON pattern document into one.
//
// A pattern document looks like:
//
//	{
//	  "description": "water worlds orbiting rocky bodies",
//	  "name": "Col 285*",
//	  "bodies": [
//	    {"subType": "Water world", "gravity": {"min": 0.5, "max": 1.5},
//	     "parents": [{"subType": "Rocky body"}]},
//	    {"anyOf": [{"subType": "Earth-like world"}, {"subType": "Ammonia world"}],
//	     "group": "terraformable"}
//	  ]
//	}
//
// Each element of bodies is a clause: it is satisfied when at least one body
// in the system satisfies every predicate of the clause. Clauses are ANDed.
// An anyOf group is satisfied when any of its member clauses is.
package pattern
