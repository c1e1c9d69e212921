package models

import "errors"

var (
	// ErrNotFound возвращается хранилищем, если запись отсутствует
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict - условное обновление не применилось: статус уже изменился
	ErrStatusConflict = errors.New("status changed concurrently")
	// ErrDuplicate - нарушено ограничение уникальности
	ErrDuplicate = errors.New("duplicate record")
)
