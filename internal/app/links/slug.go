package links

import (
	"fmt"
	"math"
)

// slugAlphabet 是 base62 字母表：数字、小写、大写。
const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// slugMinLen 是短码的最小长度，不足时用 '0' 左侧补齐。
const slugMinLen = 8

// GenerateSlug 由 (url, salt) 确定性地生成短码。
//
// 算法：
// - 对 url 和 salt 分别做多项式哈希（基数 31 / 37），int64 累加，自然溢出
// - 两个哈希按位异或后抹掉符号位，保证非负
// - 对结果做 base62 编码，低位在前写入后整体反转，左补 '0' 到最小长度
//
// 相同输入必然产生相同短码；不同输入可能碰撞，碰撞由生命周期层
// 的主键约束和过期淘汰兜底，这里不做探测。
func GenerateSlug(url, salt string) string {
	var hu, hs int64
	for _, r := range url {
		hu = hu*31 + int64(r)
	}
	for _, r := range salt {
		hs = hs*37 + int64(r)
	}
	v := (hu ^ hs) & math.MaxInt64

	var buf [16]byte
	n := 0
	for v > 0 {
		buf[n] = slugAlphabet[v%62]
		v /= 62
		n++
	}
	for n < slugMinLen {
		buf[n] = slugAlphabet[0]
		n++
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf[:n])
}

// ShortURL 用进程级配置的 scheme/host 拼出完整短链。
func ShortURL(scheme, hostName, slug string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, hostName, slug)
}
