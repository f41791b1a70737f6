package error

// GenericError is implemented by every error type in this package so the
// REST recovery middleware can map a panic back to an HTTP response.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
