// Package detection classifies a proxied route into a known self-hosted
// application.
//
// Three tiers run in order and each is skipped once an earlier one has
// produced a result:
//
//  1. Subdomain heuristic: the leading domain label and its '-'/'_' tokens
//     are checked against an ordered keyword table; the first hit wins.
//  2. Content fingerprint: one rate limited GET extracts title, meta
//     generator, meta application-name, body and headers; every signature
//     is evaluated and the highest confidence wins, earlier entries on ties.
//  3. Online catalog: only when tier 2 matched nothing, the extracted names
//     are looked up in the catalog at a fixed confidence of 0.5.
//
// Signatures are a versioned YAML table, embedded by default and
// replaceable by a local file or an object in storage.
//
// Detect is used by bulk sync and accepts any result. DetectStrict is used
// by manual re-detection and also reports whether the result clears the
// configured floor (0.7 by default).
package detection
