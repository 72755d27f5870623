package domain

import (
	"errors"
	"fmt"
)

// 错误分类，两个前端各自映射到协议状态码
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("product not found")
	ErrAlreadyExists      = errors.New("product already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInternal           = errors.New("internal error")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NotFoundErr(id int64) error {
	return fmt.Errorf("%w: id=%d", ErrNotFound, id)
}

func AlreadyExistsErr(id int64) error {
	return fmt.Errorf("%w: id=%d", ErrAlreadyExists, id)
}

func StorageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
