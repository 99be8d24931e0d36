// Package ignorefile compiles dropignore rule lines into anchored matchers.
//
// The rule language is a small subset of gitignore:
//   - Leaf names (node_modules) match at any depth under the base directory
//   - Rules with an inner separator (build/out, /dist) are rooted at the base
//   - A trailing separator (cache/) restricts the rule to directories
//   - Wildcards: * (within a segment), ** (across segments), ? (zero or one character)
//
// Negation, character classes, brace expansion and comments are not part of
// the language; lines using them fail to compile and are reported with their
// line number.
//
// Usage:
//
//	set, lineErrs, err := ignorefile.Load("/data/Dropbox/.dropignore", "/data/Dropbox", pathinfo.OS{})
//	if err != nil {
//	    return err
//	}
//	for _, le := range lineErrs {
//	    fmt.Fprintln(os.Stderr, le)
//	}
//
//	if set.Matches("/data/Dropbox/web/node_modules") {
//	    // Path should carry the ignore flag
//	}
//
// Compiled matchers and sets are immutable and safe for concurrent reads.
package ignorefile
