package stats

import "time"

//跳转事件
type ResolveEvent struct {
	Slug       string
	ResolvedAt time.Time //跳转时间
	IP         string    //访问者的IP
	UserAgent  string    //客户端信息（浏览器、操作系统）
	Referer    string    //从哪个页面点过来的
}

// Collector 收集器接口（方便后续换 Kafka）
type Collector interface {
	Collect(event ResolveEvent)
	Close()
}

// ChannelCollector 基于 channel 的收集器
type ChannelCollector struct {
	ch     chan ResolveEvent
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch:     make(chan ResolveEvent, bufferSize),
		closed: false,
	}
}

func (c *ChannelCollector) Collect(event ResolveEvent) {
	if c.closed {
		return
	}
	select {
	case c.ch <- event:
	default:
		// 通道满了，丢弃。统计是尽力而为，不能拖慢跳转
	}
}

func (c *ChannelCollector) Events() <-chan ResolveEvent {
	return c.ch
}

func (c *ChannelCollector) Close() {
	c.closed = true
	close(c.ch)
}

// NopCollector 统计关闭时使用，事件直接丢弃。
type NopCollector struct{}

func (NopCollector) Collect(ResolveEvent) {}
func (NopCollector) Close()               {}
