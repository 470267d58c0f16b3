package policy

import "crypto/subtle"

// PrincipalType differentiates human callers from the machine-to-machine
// processor caller.
type PrincipalType string

const (
	PrincipalUser    PrincipalType = "user"
	PrincipalService PrincipalType = "service"
)

// Principal is the resolved caller a decision was granted to. Service
// principals carry no Identity; they exist only on the dual-auth summary
// endpoint.
type Principal struct {
	Type     PrincipalType
	Identity *Identity // nil for service principals
}

// UserPrincipal wraps an identity as a user principal.
func UserPrincipal(id *Identity) *Principal {
	return &Principal{Type: PrincipalUser, Identity: id}
}

// Credential is what the transport layer extracted from the request,
// before any trust decision: either a bearer API key or a (possibly
// absent) session identity.
type Credential interface {
	credential()
}

// APIKeyCredential is a pre-shared key presented as a bearer token.
type APIKeyCredential struct {
	Key string
}

// SessionCredential is a session-resolved identity; Identity is nil when
// the request carried no (valid) session.
type SessionCredential struct {
	Identity *Identity
}

func (APIKeyCredential) credential()  {}
func (SessionCredential) credential() {}

// ResolvePrincipal turns a credential into an authorization result. API
// keys are compared in constant time against the configured processor
// key; an unconfigured key (empty string) never matches. Session
// credentials must hold an admin role.
func ResolvePrincipal(cred Credential, configuredKey string) AuthResult {
	switch c := cred.(type) {
	case APIKeyCredential:
		if configuredKey == "" || c.Key == "" {
			return AuthResult{Decision: Unauthenticated}
		}
		if subtle.ConstantTimeCompare([]byte(c.Key), []byte(configuredKey)) != 1 {
			return AuthResult{Decision: Unauthenticated}
		}
		return AuthResult{Decision: Allowed, Principal: &Principal{Type: PrincipalService}}
	case SessionCredential:
		return RequireAdmin(c.Identity)
	default:
		return AuthResult{Decision: Unauthenticated}
	}
}
