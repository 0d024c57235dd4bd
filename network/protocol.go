package network

// Message IDs for the device gateway. 1xx set up a game, 2xx are player
// actions sent by the shared device, 3xx are engine events pushed back.
const (
	MsgTypeHeartbeat = 1

	MsgTypeSetup   = 101
	MsgTypeSetupOK = 102

	MsgTypeRevealSeen = 201
	MsgTypeDescribe   = 202
	MsgTypeSkipTurn   = 203
	MsgTypeStartVote  = 204
	MsgTypeCastVote   = 205
	MsgTypeReset      = 206
	MsgTypeMute       = 207
	MsgTypeDictation  = 208

	MsgTypeStateSync     = 301
	MsgTypeNotice        = 302
	MsgTypeNarration     = 303
	MsgTypeNarrationDone = 304
	MsgTypeGameOver      = 305
)
