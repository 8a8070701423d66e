package lifecycle

import "fmt"

// CredentialError means a (server, user) pair has no usable SSH key on the
// operator host. The pair is skipped whole; none of its path entries run.
type CredentialError struct {
	Server string
	User   string
	Reason string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential for %s@%s: %s", e.User, e.Server, e.Reason)
}
