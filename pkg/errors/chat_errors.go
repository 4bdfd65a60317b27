package errors

var (
	// Domain errors — used in usecase/repository
	ErrProfileNotFound    = NotFound("profile not found")
	ErrShortIDTaken       = AlreadyExists("short id already taken")
	ErrProvisioning       = Internal("profile provisioning failed")
	ErrAlreadyFriends     = AlreadyExists("already friends")
	ErrSelfFriend         = InvalidArg("cannot add yourself as a friend")
	ErrEmptyMessage       = InvalidArg("message needs a text body or an attachment")
	ErrSendRejected       = Forbidden("message rejected by the store")
	ErrConversationClosed = FailedPrecondition("conversation is closed")
	ErrInvalidSession     = Unauthorized("invalid or expired session token")
)

func ErrFriendshipPartial(cause error) error {
	return Wrap(CodeUnavailable, "friendship only partially written, retry to complete", cause)
}

func ErrSendFailed(cause error) error {
	return Wrap(CodeUnavailable, "message send failed", cause)
}

func ErrUploadFailed(cause error) error {
	return Wrap(CodeUnavailable, "attachment upload failed", cause)
}

func ErrBulkReadFailed(cause error) error {
	return Wrap(CodeUnavailable, "conversation history read failed", cause)
}
