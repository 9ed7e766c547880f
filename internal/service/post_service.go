package service

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/content"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/kv"
	"AmineForum/internal/pkg/util"
	"AmineForum/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

const (
	maxTitleRunes   = 100
	minTitleRunes   = 2
	maxSummaryRunes = 300
)

var dataImageRegex = regexp.MustCompile(`!\[[^\]]*\]\(data:[^)]*\)`)

type PostService interface {
	Categories() []string
	Upsert(ctx context.Context, actorID string, post *model.Post) (*model.Post, error)
	MarkDeleted(ctx context.Context, actorID, postID string) error
	SetPinned(ctx context.Context, actorID, postID string, pinned bool) error
	LoadAll(ctx context.Context, viewerID string) ([]*model.Post, error)
	LoadByCategory(ctx context.Context, category, viewerID string) ([]*model.Post, error)
	LoadPostContent(ctx context.Context, postID, viewerID string) (*model.Post, error)
	UpdateAuthorSnapshot(ctx context.Context, target model.AuthorSnapshot) (int, error)
	RekeyAuthor(ctx context.Context, oldID, newID string) error
	RefreshCache(ctx context.Context) (int, error)
}

type PostServiceImpl struct {
	postRepo   repository.PostRepo
	statsRepo  repository.PostStatsRepo
	replyRepo  repository.ReplyRepo
	actionRepo repository.PostActionRepo
	access     *accessChecker
	source     content.Source
	bus        *event.Bus
	categories []string
}

func NewPostService(
	postRepo repository.PostRepo,
	statsRepo repository.PostStatsRepo,
	replyRepo repository.ReplyRepo,
	actionRepo repository.PostActionRepo,
	accountRepo repository.AccountRepo,
	adminMetaRepo repository.AdminMetaRepo,
	blockRepo repository.BlockRepo,
	source content.Source,
	bus *event.Bus,
	categories []string,
) PostService {
	return &PostServiceImpl{
		postRepo:   postRepo,
		statsRepo:  statsRepo,
		replyRepo:  replyRepo,
		actionRepo: actionRepo,
		access:     newAccessChecker(accountRepo, adminMetaRepo, blockRepo),
		source:     source,
		bus:        bus,
		categories: categories,
	}
}

func (s *PostServiceImpl) Categories() []string {
	return append([]string(nil), s.categories...)
}

// findPost 本地优先，其次缓存；不检查墓碑
func findPost(ctx context.Context, repo repository.PostRepo, postID string) *model.Post {
	for _, p := range repo.Local(ctx) {
		if p.ID == postID {
			return p
		}
	}
	for _, p := range repo.Cached(ctx) {
		if p.ID == postID {
			return p
		}
	}
	return nil
}

func isTombstoned(ctx context.Context, repo repository.PostRepo, postID string) bool {
	_, ok := repo.Tombstones(ctx)[postID]
	return ok
}

func (s *PostServiceImpl) validate(post *model.Post) error {
	title := strings.TrimSpace(post.Title)
	n := utf8.RuneCountInString(title)
	if n > maxTitleRunes || n < minTitleRunes {
		return ErrPostTitleInvalid
	}
	// 草稿同样要求标题、分类和正文
	if !util.Contains(s.categories, post.Category) {
		return ErrCategoryInvalid
	}
	if strings.TrimSpace(post.Content) == "" {
		return ErrContentEmpty
	}
	if utf8.RuneCountInString(post.Summary) > maxSummaryRunes {
		return ErrSummaryTooLong
	}
	if post.Status != consts.PostStatusDraft && post.Status != consts.PostStatusPublished {
		return ErrParamInvalid
	}
	return nil
}

// Upsert actorID 为空表示内部调用，不做作者与权限检查
func (s *PostServiceImpl) Upsert(ctx context.Context, actorID string, incoming *model.Post) (*model.Post, error) {
	if incoming == nil {
		return nil, ErrParamInvalid
	}
	incoming.Title = strings.TrimSpace(incoming.Title)
	if incoming.Status == "" {
		incoming.Status = consts.PostStatusPublished
	}

	existing := (*model.Post)(nil)
	if incoming.ID != "" {
		existing = findPost(ctx, s.postRepo, incoming.ID)
	}

	if actorID != "" {
		if err := s.access.canPublish(ctx, actorID); err != nil {
			return nil, err
		}
		if existing != nil && existing.Author.ID != actorID && !s.access.isAdmin(ctx, actorID) {
			return nil, UnauthorizedError
		}
		if existing == nil {
			snap := s.access.snapshot(ctx, actorID)
			if snap == nil {
				return nil, ErrUserNotFound
			}
			incoming.Author = *snap
		}
	}

	merged := &model.Post{}
	if existing != nil {
		*merged = *existing
		// 作者快照不随编辑改变
		incoming.Author = model.AuthorSnapshot{}
		if err := copier.CopyWithOption(merged, incoming, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
			return nil, errors.Wrap(err, "merge post")
		}
		// 标签和摘要允许清空；发布日期保持不变
		merged.Tags = append([]string{}, incoming.Tags...)
		merged.Summary = incoming.Summary
		merged.Date = existing.Date
	} else {
		*merged = *incoming
		if merged.ID == "" {
			merged.ID = s.newPostID(ctx)
		}
		// 用户发帖的日期只由服务端决定
		if actorID != "" || merged.Date == "" {
			merged.Date = time.Now().Format(time.RFC3339)
		}
	}

	merged.Tags = util.DedupTags(merged.Tags)
	if merged.Summary == "" {
		merged.Summary = util.Summary(merged.Content)
	}
	source := merged.Content
	if source == "" {
		source = merged.Summary
	}
	merged.ReadTime = util.ReadTime(source)
	merged.UpdatedAt = time.Now().Format(time.RFC3339)
	merged.Normalize()

	if err := s.validate(merged); err != nil {
		return nil, err
	}

	err := s.saveLocal(ctx, merged)
	if errors.Is(err, kv.ErrQuotaExceeded) {
		log.WarnContext(ctx, "post exceeds storage quota, stripping embedded images", "post_id", merged.ID)
		stripEmbeddedImages(merged)
		err = s.saveLocal(ctx, merged)
		if errors.Is(err, kv.ErrQuotaExceeded) {
			return nil, ErrStorageFull
		}
	}
	if err != nil {
		return nil, err
	}
	if isTombstoned(ctx, s.postRepo, merged.ID) {
		log.InfoContext(ctx, "upserted post is tombstoned and stays hidden", "post_id", merged.ID)
	}
	return merged, nil
}

func (s *PostServiceImpl) newPostID(ctx context.Context) string {
	id := fmt.Sprintf("post-%d", time.Now().UnixMilli())
	if findPost(ctx, s.postRepo, id) != nil || isTombstoned(ctx, s.postRepo, id) {
		id += "-" + uuid.NewString()[:8]
	}
	return id
}

func (s *PostServiceImpl) saveLocal(ctx context.Context, post *model.Post) error {
	return s.postRepo.UpdateLocal(ctx, func(posts []*model.Post) ([]*model.Post, bool, error) {
		for i, p := range posts {
			if p != nil && p.ID == post.ID {
				posts[i] = post
				return posts, true, nil
			}
		}
		return append(posts, post), true, nil
	})
}

func stripEmbeddedImages(post *model.Post) {
	if strings.HasPrefix(post.Author.Avatar, "data:") {
		post.Author.Avatar = ""
	}
	if strings.HasPrefix(post.Author.Cover, "data:") {
		post.Author.Cover = ""
	}
	post.Content = dataImageRegex.ReplaceAllString(post.Content, "")
}

// MarkDeleted 写入墓碑并移除本地记录，重复调用无副作用
func (s *PostServiceImpl) MarkDeleted(ctx context.Context, actorID, postID string) error {
	if postID == "" {
		return ErrParamInvalid
	}
	if actorID != "" {
		post := findPost(ctx, s.postRepo, postID)
		if post == nil {
			if isTombstoned(ctx, s.postRepo, postID) {
				return nil
			}
			return ErrPostNotFound
		}
		if post.Author.ID != actorID && !s.access.isAdmin(ctx, actorID) {
			return UnauthorizedError
		}
	}

	if err := s.postRepo.AddTombstone(ctx, postID); err != nil {
		return err
	}
	err := s.postRepo.UpdateLocal(ctx, func(posts []*model.Post) ([]*model.Post, bool, error) {
		out := posts[:0]
		for _, p := range posts {
			if p != nil && p.ID != postID {
				out = append(out, p)
			}
		}
		return out, len(out) != len(posts), nil
	})
	if err != nil {
		return err
	}

	if err := s.postRepo.SetPinned(ctx, postID, false); err != nil {
		log.WarnContext(ctx, "unpin deleted post failed", "post_id", postID, "err", err)
	}
	if err := s.replyRepo.DeletePost(ctx, postID); err != nil {
		log.WarnContext(ctx, "delete replies of deleted post failed", "post_id", postID, "err", err)
	}
	if err := s.statsRepo.Delete(ctx, postID); err != nil {
		log.WarnContext(ctx, "delete stats of deleted post failed", "post_id", postID, "err", err)
	}
	if err := s.actionRepo.RemovePost(ctx, postID); err != nil {
		log.WarnContext(ctx, "remove deleted post from likes failed", "post_id", postID, "err", err)
	}

	s.bus.Publish(ctx, consts.TopicPostDeleted, postID, map[string]string{"postId": postID})
	return nil
}

func (s *PostServiceImpl) SetPinned(ctx context.Context, actorID, postID string, pinned bool) error {
	if postID == "" {
		return ErrParamInvalid
	}
	if actorID != "" && !s.access.isAdmin(ctx, actorID) {
		return UnauthorizedError
	}
	return s.postRepo.SetPinned(ctx, postID, pinned)
}

// merged 本地帖子覆盖同 ID 的缓存帖子
func (s *PostServiceImpl) merged(ctx context.Context) []*model.Post {
	local := s.postRepo.Local(ctx)
	seen := make(map[string]struct{}, len(local))
	out := make([]*model.Post, 0, len(local))
	for _, p := range local {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	for _, p := range s.postRepo.Cached(ctx) {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// visibility 一次请求内复用的过滤条件
type visibility struct {
	viewerID   string
	tombstones map[string]struct{}
	pinned     map[string]struct{}
	stats      map[string]model.StatsOverride
	blocked    func(string) bool
	banned     func(string) bool
	tags       map[string]*model.TagInfo
}

func (s *PostServiceImpl) newVisibility(ctx context.Context, viewerID string) *visibility {
	return &visibility{
		viewerID:   viewerID,
		tombstones: s.postRepo.Tombstones(ctx),
		pinned:     s.postRepo.PinnedIDs(ctx),
		stats:      s.statsRepo.All(ctx),
		blocked:    s.access.blockedSet(ctx, viewerID),
		banned:     s.access.bannedSet(ctx),
		tags:       make(map[string]*model.TagInfo),
	}
}

func (v *visibility) visible(p *model.Post) bool {
	if _, ok := v.tombstones[p.ID]; ok {
		return false
	}
	if p.IsDraft() && (v.viewerID == "" || p.Author.ID != v.viewerID) {
		return false
	}
	if v.banned(p.Author.ID) {
		return false
	}
	return !v.blocked(p.Author.ID)
}

// present 返回副本：叠加统计、合并两处置顶状态、补齐作者徽章
func (s *PostServiceImpl) present(ctx context.Context, v *visibility, p *model.Post) *model.Post {
	out := *p
	out.Tags = append([]string{}, p.Tags...)
	out.PinnedInCategories = append([]string{}, p.PinnedInCategories...)
	if _, ok := v.pinned[p.ID]; ok {
		out.IsPinnedGlobally = true
	}
	out.ApplyStats(v.stats[p.ID].Merge(p.BaseStats()))

	tag, ok := v.tags[p.Author.ID]
	if !ok {
		meta := s.access.adminMetaRepo.Read(ctx, p.Author.ID)
		tag = model.BuildTagInfo(s.access.isAdminWithSnapshot(ctx, &out.Author), meta)
		v.tags[p.Author.ID] = tag
	}
	out.Author.TagInfo = tag
	return &out
}

func (s *PostServiceImpl) LoadAll(ctx context.Context, viewerID string) ([]*model.Post, error) {
	v := s.newVisibility(ctx, viewerID)
	posts := make([]*model.Post, 0)
	for _, p := range s.merged(ctx) {
		if v.visible(p) {
			posts = append(posts, s.present(ctx, v, p))
		}
	}
	sortPosts(posts, func(p *model.Post) bool { return p.IsPinnedGlobally })
	return posts, nil
}

func isAllCategory(category string) bool {
	return category == "" || category == "all" || category == "全部"
}

// LoadByCategory 分类内置顶：在该分类置顶或全局置顶
func (s *PostServiceImpl) LoadByCategory(ctx context.Context, category, viewerID string) ([]*model.Post, error) {
	if isAllCategory(category) {
		return s.LoadAll(ctx, viewerID)
	}
	v := s.newVisibility(ctx, viewerID)
	posts := make([]*model.Post, 0)
	for _, p := range s.merged(ctx) {
		if p.Category == category && v.visible(p) {
			posts = append(posts, s.present(ctx, v, p))
		}
	}
	sortPosts(posts, func(p *model.Post) bool {
		return p.IsPinnedGlobally || util.Contains(p.PinnedInCategories, category)
	})
	return posts, nil
}

// sortPosts 置顶在前；置顶组内按 order 升序；其余按日期倒序
func sortPosts(posts []*model.Post, pinned func(*model.Post) bool) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		pa, pb := pinned(a), pinned(b)
		if pa != pb {
			return pa
		}
		if pa && a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Time().After(b.Time())
	})
}

// LoadPostContent 本地 -> 缓存 -> 内容源，内容源结果写回缓存
func (s *PostServiceImpl) LoadPostContent(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	v := s.newVisibility(ctx, viewerID)
	if _, ok := v.tombstones[postID]; ok {
		return nil, nil
	}

	var found *model.Post
	for _, p := range s.postRepo.Local(ctx) {
		if p.ID == postID {
			found = p
			break
		}
	}
	var cached *model.Post
	if found == nil {
		for _, p := range s.postRepo.Cached(ctx) {
			if p.ID == postID {
				cached = p
				break
			}
		}
		if cached != nil && cached.Content != "" {
			found = cached
		}
	}
	if found == nil && s.source != nil {
		fetched, err := s.source.Fetch(ctx, postID)
		if err != nil {
			log.InfoContext(ctx, "content source fetch failed, treat as absent", "post_id", postID, "err", err)
		} else {
			if cached != nil {
				fetched.IsPinnedGlobally = cached.IsPinnedGlobally
				fetched.PinnedInCategories = cached.PinnedInCategories
				fetched.Order = cached.Order
			}
			if err := s.cachePost(ctx, fetched); err != nil {
				log.WarnContext(ctx, "populate posts cache failed", "post_id", postID, "err", err)
			}
			found = fetched
		}
	}
	if found == nil {
		found = cached
	}
	if found == nil || !v.visible(found) {
		return nil, nil
	}
	return s.present(ctx, v, found), nil
}

func (s *PostServiceImpl) cachePost(ctx context.Context, post *model.Post) error {
	return s.postRepo.UpdateCache(ctx, func(posts []*model.Post) ([]*model.Post, bool, error) {
		for i, p := range posts {
			if p != nil && p.ID == post.ID {
				posts[i] = post
				return posts, true, nil
			}
		}
		return append(posts, post), true, nil
	})
}

// UpdateAuthorSnapshot 按 ID 或名字匹配作者，覆盖本地与缓存帖子中的快照，返回更新条数
func (s *PostServiceImpl) UpdateAuthorSnapshot(ctx context.Context, target model.AuthorSnapshot) (int, error) {
	if target.ID == "" && strings.TrimSpace(target.Name) == "" {
		return 0, nil
	}
	overwrite := func(posts []*model.Post) int {
		n := 0
		for _, p := range posts {
			if p == nil || !p.Author.Matches(target.ID, target.Name) {
				continue
			}
			if target.Name != "" {
				p.Author.Name = target.Name
			}
			p.Author.Avatar = target.Avatar
			p.Author.Cover = target.Cover
			p.Author.School = target.School
			p.Author.ClassName = target.ClassName
			p.Author.Email = target.Email
			p.Author.IsAdmin = target.IsAdmin
			p.Author.TagInfo = target.TagInfo
			n++
		}
		return n
	}

	var local, cached int
	if err := s.postRepo.UpdateLocal(ctx, func(posts []*model.Post) ([]*model.Post, bool, error) {
		local = overwrite(posts)
		return posts, local > 0, nil
	}); err != nil {
		return 0, err
	}
	if err := s.postRepo.UpdateCache(ctx, func(posts []*model.Post) ([]*model.Post, bool, error) {
		cached = overwrite(posts)
		return posts, cached > 0, nil
	}); err != nil {
		return local, err
	}
	return local + cached, nil
}

func (s *PostServiceImpl) RekeyAuthor(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	rekey := func(posts []*model.Post) ([]*model.Post, bool, error) {
		changed := false
		for _, p := range posts {
			if p != nil && p.Author.ID == oldID {
				p.Author.ID = newID
				changed = true
			}
		}
		return posts, changed, nil
	}
	if err := s.postRepo.UpdateLocal(ctx, rekey); err != nil {
		return err
	}
	return s.postRepo.UpdateCache(ctx, rekey)
}

// RefreshCache 从内容源重建 posts_cache，单篇拉取失败时保留旧缓存
func (s *PostServiceImpl) RefreshCache(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, nil
	}
	metas, err := s.source.Metadata(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "load post metadata")
	}
	tombstones := s.postRepo.Tombstones(ctx)
	previous := make(map[string]*model.Post)
	for _, p := range s.postRepo.Cached(ctx) {
		previous[p.ID] = p
	}

	fresh := make([]*model.Post, 0, len(metas))
	for i := range metas {
		meta := &metas[i]
		if _, dead := tombstones[meta.ID]; dead {
			continue
		}
		post, err := s.source.Fetch(ctx, meta.ID)
		if err != nil {
			log.WarnContext(ctx, "fetch post failed, keep cached copy", "post_id", meta.ID, "err", err)
			post = previous[meta.ID]
			if post == nil {
				continue
			}
		}
		content.ApplyMetadata(post, meta)
		fresh = append(fresh, post)
	}

	err = s.postRepo.UpdateCache(ctx, func([]*model.Post) ([]*model.Post, bool, error) {
		return fresh, true, nil
	})
	if err != nil {
		return 0, err
	}
	return len(fresh), nil
}
