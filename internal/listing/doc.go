// Package listing walks the HTML directory listings rendered by static file
// servers and produces every relative path reachable from a starting page.
//
// # Order
//
// Links are visited in document order. A link ending in "/" is a
// subdirectory: its listing is fetched and its whole subtree is produced
// first, then the directory path itself. Any other link is produced as is.
// For a root containing "a.txt" and "sub/" (which contains "b.txt") the
// sequence is:
//
//	a.txt
//	sub/b.txt
//	sub/
//
// # Laziness
//
// The Walker keeps an explicit stack of partially consumed listings. Each
// call to Next performs at most one listing fetch, so a consumer that
// downloads every path before asking for the next one never overlaps the
// walk with its own work.
//
// # Failure
//
// There is no retry and no cycle detection. A listing that fails to load
// (transport error, timeout, non-2xx status) ends the walk with that error.
// A listing that links back to an ancestor recurses until it fails; use
// WithMaxDepth to turn that into an explicit error.
//
// # Usage
//
//	w := listing.NewWalker(sess, "http://localhost:8000/")
//	for path, err := range w.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(path)
//	}
package listing
