package links

import (
	"regexp"
	"strings"
)

// urlRe 只接受 http/https、由字母数字点横线组成的 host、
// 可选的 :端口 和以 / 开头的路径。其它 scheme 一律拒绝。
var urlRe = regexp.MustCompile(`^(https?)://([\w.-]+)(:[0-9]+)?(/.*)?$`)

// ValidateURL 校验用户提交的长链接。纯函数，无副作用。
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errf(ErrInvalidURL, "url '%s' is not valid", raw)
	}
	if !urlRe.MatchString(raw) {
		return errf(ErrInvalidURL, "url '%s' is not valid", raw)
	}
	return nil
}

// validateLimit 校验跳转次数上限：允许缺省（nil），给定时必须为正。
func validateLimit(limit *int) error {
	if limit != nil && *limit <= 0 {
		return errf(ErrInvalidLimit, "limit should be more than 0, got %d", *limit)
	}
	return nil
}
