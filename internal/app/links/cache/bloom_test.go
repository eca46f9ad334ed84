package cache

import "testing"

func TestSlugFilterFailOpenBeforeWarm(t *testing.T) {
	f := NewSlugFilter(1000, 0.01)
	// 未回灌前必须放行，否则重启后存量 slug 全部 404
	if !f.MightExist("whatever") {
		t.Fatal("未 Warm 的过滤器应当放行所有查询")
	}
}

func TestSlugFilterAfterWarm(t *testing.T) {
	f := NewSlugFilter(1000, 0.01)
	f.Warm([]string{"abc12345", "def67890"})

	if !f.MightExist("abc12345") {
		t.Fatal("已灌入的 slug 被误判为不存在")
	}
	if !f.MightExist("def67890") {
		t.Fatal("已灌入的 slug 被误判为不存在")
	}

	f.Add("ghi00000")
	if !f.MightExist("ghi00000") {
		t.Fatal("Warm 之后 Add 的 slug 被误判为不存在")
	}

	// 布隆过滤器有误判率但没有漏判：随便挑一个没灌过的，大概率被拒
	misses := 0
	for _, s := range []string{"zz000001", "zz000002", "zz000003", "zz000004", "zz000005"} {
		if !f.MightExist(s) {
			misses++
		}
	}
	if misses == 0 {
		t.Error("1% 误判率下 5 个未知 slug 应当至少有一个被拒")
	}
}
