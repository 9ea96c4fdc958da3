package usercontext

// Shared Locals/session keys used across handlers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyTenantID      = "tenant_id"
	KeyUsername      = "username"
	KeyFromProtected = "from_protected"

	// KeyResolvedPermissions caches the resolver result for the
	// lifetime of one request.
	KeyResolvedPermissions = "resolved_permissions"
)
