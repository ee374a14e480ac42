/*
Package store holds a merged configuration tree and resolves paths in it.

# Paths

A path is a dotted list of mapping keys. "server.port" looks up "server"
in the root and then "port" in the result. The empty path is the root.
Use LookupSegments for keys that contain a dot.

# Merging

Each MergeRoot call folds one document root into the tree:

	st := store.New()
	_ = st.MergeRoot(first)  // {a: 1, db: {host: "h"}}
	_ = st.MergeRoot(second) // {a: 2, db: {port: 5432}}
	// tree: {a: 2, db: {host: "h", port: 5432}}

Mappings merge recursively; anything else is replaced by the later value.

# Errors

Lookups that miss return a *LookupError wrapping ErrKeyNotFound. Values
that exist but cannot be coerced return a *LookupError wrapping
ErrTypeMismatch. The two are always distinguishable:

	_, err := st.Int("name")
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
	    // use a default
	case errors.Is(err, store.ErrTypeMismatch):
	    // configuration is wrong
	}
*/
package store
