package error

var (
	ErrWaCLI           = InternalServerError("WhatsApp client is not initialized")
	ErrAlreadyLoggedIn = InternalServerError("you are already logged in :)")
	ErrSessionSaved    = InternalServerError("your session have been saved, please wait to connect 2 device in existing WhatsApp")
	ErrQrChannel       = InternalServerError("error when get qr channel")
	ErrReconnect       = InternalServerError("reconnect error")
)
