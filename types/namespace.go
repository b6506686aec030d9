package types

import (
	"regexp"

	"github.com/rotisserie/eris"
)

var regexAlphanumeric = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Namespace is the unique identifier of a world save. It names the on-disk
// save directory and prefixes every redis key, so two worlds sharing a
// backend can never read each other's deltas.
type Namespace string

func (n Namespace) String() string {
	return string(n)
}

// Validate restricts namespaces to characters that are safe in both file
// paths and storage keys: alphanumerics and hyphens.
func (n Namespace) Validate() error {
	if !regexAlphanumeric.MatchString(n.String()) {
		return eris.Errorf("invalid namespace %q: must be alphanumeric", n.String())
	}
	return nil
}
