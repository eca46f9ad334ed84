package links

import (
	"errors"
	"fmt"
)

// 领域错误按"种类"建模：handler 只需要对种类做一次 errors.Is 分发，
// 消息里则带上出错的标识（slug/url/userId），方便排查。
//
// 设计原因：
// - 哨兵错误 + Unwrap：既能 errors.Is 匹配种类，又不把种类文案拼进用户可见消息
// - 所有错误都是单次请求的终态，不重试、不致命
var (
	ErrInvalidURL         = errors.New("url is not valid")
	ErrInvalidLimit       = errors.New("limit is not valid")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrOwnerNotIdentified = errors.New("user is not identified")
	ErrNotOwner           = errors.New("user has not enough rights")
	ErrLinkNotFound       = errors.New("link does not exist")
	ErrDuplicateLink      = errors.New("link already exists and not expired")
	ErrLinkExpired        = errors.New("link has expired")
	ErrLinkExhausted      = errors.New("link limit exceeded")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

// errf 把哨兵种类和带标识的消息打包成一个错误。
func errf(kind error, format string, args ...any) error {
	return &domainError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
