package service

import (
	"errors"

	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
)

// storeErr 记录不存在时返回 notFound，其余存储错误统一包装为内部错误
func storeErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && mysql.IsNotFound(err) {
		return notFound
	}
	return appErr(err)
}

// appErr 已是业务错误则原样返回
func appErr(err error) error {
	if err == nil {
		return nil
	}
	var ae *errcode.AppError
	if errors.As(err, &ae) {
		return err
	}
	return errcode.Internal(err)
}
