package domain

import (
	"errors"
	"fmt"
)

// 错误分类：service 层只返回这五类，由 http 层映射到响应码
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// StorageError 持久层故障（不自动重试：create 类操作不幂等，盲目重试会重复建单）
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage 包装底层存储错误
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage 判断是否为存储层故障
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
