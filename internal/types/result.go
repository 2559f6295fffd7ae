package types

// Result is the envelope returned by every service operation and written
// to every HTTP response:
//
//	{ "success": true, "message": "Student created successfully", "data": {...} }
//
// Err keeps the cause of a failure for the transport layer (status mapping
// and logging). It is never serialized.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Err     error  `json:"-"`
}

// Ok builds a successful Result.
func Ok[T any](message string, data T) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

// Fail builds a failed Result carrying err as its cause. data is usually
// the zero value; Delete reports false explicitly.
func Fail[T any](message string, data T, err error) Result[T] {
	return Result[T]{Success: false, Message: message, Data: data, Err: err}
}
