package consts

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// ClaimRoleAdmin JWT 中的管理员角色
	ClaimRoleAdmin = "ADMIN"
)

const (
	AnonymousName   = "匿名"
	GuestName       = "游客"
	AdminTagLabel   = "管理员"
	RecalledMessage = "该消息已撤回"
)

const (
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
)

// DefaultPostOrder 未设置排序时的置顶顺序
const DefaultPostOrder = 999

const (
	IdentityStrategySeq  = "seq"
	IdentityStrategyUUID = "uuid"
)

// 事件主题
const (
	TopicPostStats    = "post.stats"
	TopicPostDeleted  = "post.deleted"
	TopicUserMigrated = "user.migrated"
	TopicAll          = "*"
)
