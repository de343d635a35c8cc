package errors

import "errors"

// ErrCacheMiss 缓存中不存在该键
var ErrCacheMiss = errors.New("缓存未命中")
