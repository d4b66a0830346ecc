package errcode

var (
	ErrInvalidParams   = InvalidArg("invalid params")
	ErrInvalidID       = InvalidArg("invalid id")
	ErrMissingToken    = Unauthorized("missing authorization header")
	ErrTokenFormat     = Unauthorized("invalid authorization format")
	ErrTokenInvalid    = Unauthorized("invalid or expired token")
	ErrSessionRevoked  = Unauthorized("session expired or logged in elsewhere")
	ErrUnknownSubject  = Unauthorized("user not found")
	ErrBadCredentials  = Unauthorized("invalid email or password")
	ErrNotSelf         = Forbidden("not authorized")
	ErrNotOwner        = Forbidden("not the creator owner")
	ErrNoReadAccess    = Forbidden("not subscribed to this creator")
	ErrUserNotFound    = NotFound("user not found")
	ErrCreatorNotFound = NotFound("creator not found")
	ErrPostNotFound    = NotFound("post not found")
	ErrRequestNotFound = NotFound("subscription request not found")
	ErrSubNotFound     = NotFound("subscriber not found")
	ErrEmailTaken      = Conflict("email is already used")
	ErrCreatorExists   = Conflict("user already has a creator profile")
	ErrRequestExists   = Conflict("a subscription request already exists for this creator")
	ErrSelfSubscribe   = FailedPrecondition("cannot subscribe to own creator")
	ErrCodeMismatch    = InvalidArg("verification failed")
)
