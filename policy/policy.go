// Package policy is the single place access decisions are made. Handlers
// resolve the caller to an Identity (or nil for anonymous), ask this
// package, and map the result to a status code. Decisions are pure
// functions over their inputs: no storage access, no errors.
package policy

import (
	"github.com/bookhaven/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated caller: resolved id plus role. A nil
// *Identity means the caller is anonymous.
type Identity struct {
	ID    primitive.ObjectID
	Email string
	Role  string
}

// IsAdmin reports whether the identity holds an administrative role.
func (i *Identity) IsAdmin() bool {
	if i == nil {
		return false
	}
	return i.Role == models.RoleAdmin || i.Role == models.RoleSuperAdmin
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Unauthenticated Decision = iota // no resolvable identity -> 401
	Forbidden                       // identity resolved, role insufficient -> 403
	Allowed
)

// AuthResult carries the decision and, when allowed, the principal it was
// granted to.
type AuthResult struct {
	Decision  Decision
	Principal *Principal
}

// Allowed reports whether the check passed.
func (r AuthResult) Allowed() bool { return r.Decision == Allowed }

// CanReadBook reports whether the identity may read the book's content
// (name, file URL). True iff the caller is authenticated and either owns
// the book or the book is public. Callers must map a false result on a
// specific book to NotFound, never Forbidden, so private books do not
// leak their existence.
func CanReadBook(id *Identity, book *models.Book) bool {
	if id == nil || book == nil {
		return false
	}
	return id.ID == book.OwnerID || book.IsPublic
}

// RequireAdmin gates the admin surface: author stats, publication stats,
// user management, book mutation.
func RequireAdmin(id *Identity) AuthResult {
	if id == nil {
		return AuthResult{Decision: Unauthenticated}
	}
	if !id.IsAdmin() {
		return AuthResult{Decision: Forbidden}
	}
	return AuthResult{Decision: Allowed, Principal: UserPrincipal(id)}
}

// AuthorizeServiceOrAdmin gates the AI-summary update endpoint, which is
// called both by human admins (session) and by the external processor
// (pre-shared API key). The two paths are equally privileged; the key is
// an alternative authentication method, not a role.
func AuthorizeServiceOrAdmin(providedKey, configuredKey string, id *Identity) AuthResult {
	if res := ResolvePrincipal(APIKeyCredential{Key: providedKey}, configuredKey); res.Allowed() {
		return res
	}
	return ResolvePrincipal(SessionCredential{Identity: id}, configuredKey)
}
