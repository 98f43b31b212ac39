package utils

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrBadRequest   = fmt.Errorf("Bad request")
	ErrNotFound     = fmt.Errorf("Not found")
	ErrObjectExists = fmt.Errorf("Object already exists in the memory store")
	ErrTimedOut     = fmt.Errorf("Get timed out: some object(s) not ready")
)

// Convert errors to errors with grpc status codes
func GrpcError(err error) error {
	switch err {
	case ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case ErrObjectExists:
		return status.Error(codes.AlreadyExists, err.Error())
	case ErrTimedOut:
		return status.Error(codes.DeadlineExceeded, err.Error())
	case ErrBadRequest:
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return err
}
