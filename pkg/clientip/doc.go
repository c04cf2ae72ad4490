// Package clientip extracts the real client IP address from an HTTP
// request, looking through common reverse-proxy and CDN headers before
// falling back to the connection's remote address.
//
// Every candidate value is validated with net.ParseIP, so spoofed or
// malformed header contents are skipped rather than returned verbatim.
//
//	addr := clientip.GetIP(r)
package clientip
