// Package tree models reasoning-tree documents.
//
// A reasoning tree is a single JSON document whose root object is the root
// node. Every node carries an id, an optional brief summary, optional
// reasoning text and an optional ordered list of children:
//
//	{
//	  "id": 0,
//	  "brief": "root",
//	  "children": [
//	    {"id": 1, "brief": "first idea", "reasoning": "because ...", "children": []}
//	  ]
//	}
//
// # Parsing
//
// [Parse] is the only way untrusted bytes become a [Node]. It is a typed
// parse step: the document must be valid JSON and every node must have the
// expected shape. Anything else is reported as a load failure
// ([errors.ErrCodeLoadFailure]) carrying either the raw JSON parser message or
// the JSON path of the offending node, for example:
//
//	$.children[1].children: expected array, got string
//
// Node ids must be unique across the document because they become the key of
// the rendered graph. Duplicates are rejected rather than silently merged.
//
// # Identifiers
//
// An [ID] keeps the JSON scalar it was parsed from so it can be written back
// verbatim, and exposes a canonical string form via [ID.String] that is used
// as the graph node key.
package tree
