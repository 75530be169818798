// Package security validates untrusted inputs before they enter the
// conversion pipeline and provides authenticated encryption of artifacts.
//
// The Gate checks local files and remote URLs against a validation policy:
// size ceilings, a media-type allow-list, a blocked-domain set, and a
// heuristic byte-pattern scan. The scan is a best-effort pre-filter, not an
// authoritative security boundary; payloads hidden in binary structure are
// expected to pass it.
package security
