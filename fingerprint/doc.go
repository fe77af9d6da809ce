// Package fingerprint derives short deterministic ids for HTTP requests.
//
// A Request is copied into a working object, ignore rules remove whole fields
// or the parts that match a pattern, and the result is hashed with SHA-256
// over its RFC 8785 canonical form. The fingerprint is the first eight hex
// characters of the digest.
//
//	id, err := fingerprint.Compute(req,
//	    fingerprint.IgnoreField(fingerprint.FieldUserID),
//	    fingerprint.IgnoreMatching(fingerprint.Patterns{
//	        Headers: fingerprint.HeaderPatterns{Any: fingerprint.PatternList{"^X-Request-Id$"}},
//	    }),
//	)
//
// Patterns use ECMAScript regular expression syntax and match anywhere in the
// subject unless anchored.
package fingerprint
