/*
Package errs provides the application error type and its numeric error codes.

Codes are shared by HTTP responses and by the "error" messages pushed over WebSocket
connections, so clients can branch on a stable number instead of a message string.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body carried data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the client exceeded its connection rate.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Matchmaking and Relay Errors
const (
	// ErrDuplicateJoin indicates that the connection already has an active user.
	ErrDuplicateJoin = 2001

	// ErrMalformedMessage indicates an inbound frame that could not be decoded or lacked required fields.
	ErrMalformedMessage = 2002

	// ErrUnsupportedMessageType indicates an inbound frame with an unknown "type".
	ErrUnsupportedMessageType = 2003

	// ErrRoomIDConflict indicates that a generated room id collided with an active room.
	ErrRoomIDConflict = 2101

	// ErrMatchmakingUnavailable indicates that the hub has been stopped.
	ErrMatchmakingUnavailable = 2102
)

// 3xxx: Admission Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the submitted proof is wrong or its nonce expired.
	ErrPowChallengeInvalid = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server error.
	ErrUnknown = 5000
)
