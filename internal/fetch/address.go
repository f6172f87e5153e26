package fetch

import "strings"

// schemeDelimiter separates a scheme from the rest of an address.
const schemeDelimiter = "://"

// localScheme is prefixed onto addresses that carry no scheme of their own,
// so that bare filesystem paths resolve through the local-file fetcher.
const localScheme = "file://"

// Address joins the configured base location with a resource name. When the
// joined address contains no scheme delimiter, the local-file scheme is
// prefixed so the result is always a fully qualified address.
func Address(base, name string) string {
	addr := base + "/" + name
	if !strings.Contains(addr, schemeDelimiter) {
		addr = localScheme + addr
	}
	return addr
}
