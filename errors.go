package netstate

import "errors"

// 公共错误定义
var (
	// ErrInvalidOption 无效的配置选项
	ErrInvalidOption = errors.New("invalid option")

	// ErrClosed 检测器已关闭
	ErrClosed = errors.New("detector closed")
)
