// Package identity derives stable, content-addressed identifiers for
// candidates and methods.
//
// Identifiers combine a human-readable slug with a fixed-length prefix of a
// SHA-256 digest over the normalized inputs. The construction is a pure
// function: equal inputs produce byte-identical identifiers across process
// restarts and concurrent workers, so no allocator or lock is needed.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// candidateHashLen and methodHashLen are the hex-digit prefixes kept
	// from the digest. Candidates get the longer prefix because their
	// namespace is global; methods are already scoped under a candidate.
	candidateHashLen = 12
	methodHashLen    = 8
)

// Candidate derives the identity for a tool candidate from its canonical
// name and website domain. A missing domain is an accepted degenerate case:
// the identifier stays stable but carries less entropy.
func Candidate(toolName, domain string) string {
	name := strings.ToLower(strings.TrimSpace(toolName))
	sum := digest(name + "|" + strings.ToLower(strings.TrimSpace(domain)))
	return Slug(name) + "-" + sum[:candidateHashLen]
}

// Method derives the identity for an output method from its name, its type,
// and the identity of the candidate it belongs to.
func Method(methodName, methodType, candidateID string) string {
	name := strings.ToLower(strings.TrimSpace(methodName))
	sum := digest(name + "|" + methodType + "|" + candidateID)
	return Slug(name) + "-" + methodType + "-" + sum[:methodHashLen]
}

// Slug lowercases the name and reduces it to hyphen-separated alphanumeric
// runs. Degenerate input (empty, punctuation-only) slugs to "unknown" so
// every identifier stays well-formed.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
