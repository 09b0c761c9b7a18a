package auth

const (
	ContextKeyIdentity = "identity"

	jsonKeyDetail = "detail"

	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	// DefaultRole is attached when a valid token carries no role claim.
	DefaultRole = "USER"

	// TokenType is returned alongside issued tokens.
	TokenType = "bearer"
)

// PublicPathPrefixes bypass the authentication gate.
var PublicPathPrefixes = []string{
	"/api/auth",
	"/docs",
	"/redoc",
	"/openapi.json",
	"/health",
}

const (
	msgAuthorizationMissing    = "Authorization header missing"
	msgInvalidAuthorization    = "Invalid authorization format"
	msgTokenNotProvided        = "Token not provided"
	msgInvalidOrExpiredToken   = "Invalid or expired token"
	msgInvalidTokenPayload     = "Invalid token payload"
	msgIdentityMissing         = "User identity missing in token"
	msgAuthenticationRequired  = "Authentication required"
	msgPermissionDenied        = "You do not have permission to perform this action"
	msgInvalidIdentityCtx      = "invalid identity in context"
	msgInvalidRoleCredentials  = "Invalid credentials for selected role"
	msgInvalidCredentials      = "Invalid credentials"
	msgAccountInactive         = "User account is inactive"
	msgAccountNotVerified      = "User account is not verified"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgTokenSignFailed         = "failed to sign token: %w"
	msgUserLookupFailed        = "failed to look up user"
	msgTokenIssueFailed        = "failed to issue token"
)
