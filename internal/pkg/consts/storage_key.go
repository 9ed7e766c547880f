package consts

// 持久化 Key，与旧版前端 localStorage 布局保持一致，不能随意改名
const (
	UserSeqKey        = "user_seq"
	UserIDMapKey      = "user_id_map"
	AccountsKey       = "accounts"
	AdminMetaKey      = "admin_meta:"
	BlockListKey      = "block_list:"
	FollowGraphKey    = "follow_graph"
	LikesKey          = "likes:"
	FavoritesKey      = "favorites:"
	LocalPostsKey     = "local_posts"
	PostsCacheKey     = "posts_cache"
	DeletedPostsKey   = "deleted_posts"
	PinnedPostsKey    = "pinned_posts"
	PostStatsKey      = "post_stats"
	LocalRepliesKey   = "local_replies"
	DMThreadKeyPrefix = "dm:"
)
