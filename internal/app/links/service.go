package links

import (
	"context"
	"errors"
	"time"
)

// Config 是注入给生命周期服务的进程级不可变配置。
//
// 设计原因：
// - TTL、短链 scheme/host 不读全局状态，构造时一次性传入，便于测试
type Config struct {
	// TTL 过期时长：now >= createdAt+TTL 即过期
	TTL      time.Duration
	Scheme   string
	HostName string
}

// CreateResult 是创建短链的返回：owner id（匿名创建时是新生成的）和完整短链。
type CreateResult struct {
	OwnerID  string
	ShortURL string
}

// Service 编排短链的创建/跳转/编辑/删除，负责过期、次数上限和归属校验。
// 调用之间无状态，所有持久状态都在外部 store 里。
type Service struct {
	links LinkStore
	users UserStore
	cfg   Config
	now   func() time.Time // 可注入时钟，测试用
}

func NewService(links LinkStore, users UserStore, cfg Config) *Service {
	return &Service{
		links: links,
		users: users,
		cfg:   cfg,
		now:   time.Now,
	}
}

// CreateLink 为 url 创建短链。userID 为空表示匿名，会先创建一个新用户。
//
// 流程（顺序即错误优先级）：
// 1. 解析 owner（缺省则新建，给定则必须存在）
// 2. 校验 url、limit
// 3. 去重：同 owner 同 url 存在未过期记录则拒绝
// 4. 生成确定性短码；同短码的过期旧记录先删除（短码复用）
// 5. 插入新记录，attempts=0
func (s *Service) CreateLink(ctx context.Context, url string, limit *int, userID string) (CreateResult, error) {
	owner, err := s.ensureUser(ctx, userID)
	if err != nil {
		return CreateResult{}, err
	}
	if err := ValidateURL(url); err != nil {
		return CreateResult{}, err
	}
	if err := validateLimit(limit); err != nil {
		return CreateResult{}, err
	}

	now := s.now()
	existing, err := s.links.FindActiveByURL(ctx, url, owner.ID, now.Add(-s.cfg.TTL))
	if err == nil {
		return CreateResult{}, errf(ErrDuplicateLink,
			"link '%s' for user '%s' already exists and not expired", existing.FullURL, existing.OwnerID)
	}
	if !errors.Is(err, ErrLinkNotFound) {
		return CreateResult{}, err
	}

	slug := GenerateSlug(url, owner.ID)

	// 同 slug 下的过期旧记录先清掉，让短码可以复用。
	// 未过期的碰撞记录不在这里处理：Insert 按 last-writer-wins 落库，主键约束兜底。
	old, err := s.links.FindBySlug(ctx, slug)
	if err == nil {
		if s.expired(old, now) {
			if err := s.links.Delete(ctx, old.Slug); err != nil {
				return CreateResult{}, err
			}
		}
	} else if !errors.Is(err, ErrLinkNotFound) {
		return CreateResult{}, err
	}

	link := Link{
		Slug:          slug,
		FullURL:       url,
		OwnerID:       owner.ID,
		AttemptsLimit: limit,
		Attempts:      0,
		CreatedAt:     now,
	}
	if err := s.links.Insert(ctx, link); err != nil {
		return CreateResult{}, err
	}

	return CreateResult{
		OwnerID:  owner.ID,
		ShortURL: ShortURL(s.cfg.Scheme, s.cfg.HostName, slug),
	}, nil
}

// Resolve 是"点击短链"：返回跳转目标并把 attempts 加一。
// 过期先于次数上限检查。这是最高频路径：一次查找 + 一次原子自增。
func (s *Service) Resolve(ctx context.Context, slug string) (string, error) {
	link, err := s.links.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return "", errf(ErrLinkNotFound, "link with slug '%s' does not exist", slug)
		}
		return "", err
	}

	if s.expired(link, s.now()) {
		return "", errf(ErrLinkExpired, "link '/%s' has expired", slug)
	}
	if link.AttemptsLimit != nil && link.Attempts >= *link.AttemptsLimit {
		return "", errf(ErrLinkExhausted, "link '/%s' limit exceeded", slug)
	}

	if err := s.links.IncrementAttempts(ctx, slug); err != nil {
		return "", err
	}
	return link.FullURL, nil
}

// Delete 删除短链，只允许 owner 操作。过期的链接也可以删。
func (s *Service) Delete(ctx context.Context, slug, ownerID string) error {
	link, err := s.ensureLinkWithOwner(ctx, slug, ownerID)
	if err != nil {
		return err
	}
	return s.links.Delete(ctx, link.Slug)
}

// Edit 修改跳转次数上限（nil 表示取消上限）。attempts 计数不动。
// 已过期的链接不可编辑。
func (s *Service) Edit(ctx context.Context, slug, ownerID string, limit *int) error {
	link, err := s.ensureLinkWithOwner(ctx, slug, ownerID)
	if err != nil {
		return err
	}
	if s.expired(link, s.now()) {
		return errf(ErrLinkExpired, "link '/%s' has expired", slug)
	}
	if err := validateLimit(limit); err != nil {
		return err
	}
	return s.links.UpdateLimit(ctx, slug, limit)
}

// CleanupExpired 批量删除所有过期记录，返回删除条数。
// 幂等，由外部定时器触发；单条 DELETE，不持有阻塞读写的锁。
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.TTL)
	return s.links.DeleteCreatedBefore(ctx, cutoff)
}

func (s *Service) ensureUser(ctx context.Context, userID string) (User, error) {
	if userID == "" {
		return s.users.Create(ctx)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, errf(ErrUserNotFound, "user with id '%s' does not exist", userID)
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) ensureLinkWithOwner(ctx context.Context, slug, ownerID string) (Link, error) {
	if ownerID == "" {
		return Link{}, errf(ErrOwnerNotIdentified, "user is not identified")
	}
	link, err := s.links.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return Link{}, errf(ErrLinkNotFound, "link with slug '%s' does not exist", slug)
		}
		return Link{}, err
	}
	if link.OwnerID != ownerID {
		return Link{}, errf(ErrNotOwner, "user '%s' has not enough rights", ownerID)
	}
	return link, nil
}

func (s *Service) expired(link Link, now time.Time) bool {
	return !now.Before(link.CreatedAt.Add(s.cfg.TTL))
}
