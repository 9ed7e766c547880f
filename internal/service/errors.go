package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	PayloadTooLarge     = 413
	InternalServerError = 500
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrLoginIDInvalid        = errors.New("账号不能为空、不能包含空白且不超过64个字符")
	ErrPasswordTooShort      = errors.New("密码至少8位")
	ErrPasswordIncorrect     = errors.New("密码错误")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrUserMuted             = errors.New("你已被禁言")
	ErrUserBan               = errors.New("用户已被封禁")
	ErrNoPermissionOverAdmin = errors.New("无权对管理员执行此操作")
	ErrAdminKeyIncorrect     = errors.New("管理员密钥错误")
	ErrRoleInvalid           = errors.New("角色无效")
	ErrBlockSelf             = errors.New("不能拉黑自己")
	ErrReportSelf            = errors.New("不能举报自己")
	ErrBlocked               = errors.New("对方与你存在拉黑关系")
	ErrPostNotFound          = errors.New("帖子不存在")
	ErrPostTitleInvalid      = errors.New("标题需为2到100个字")
	ErrCategoryInvalid       = errors.New("请选择有效的分类")
	ErrContentEmpty          = errors.New("内容不能为空")
	ErrSummaryTooLong        = errors.New("摘要最多300个字")
	ErrStatFieldInvalid      = errors.New("统计字段无效")
	ErrReplyNotFound         = errors.New("回复不存在")
	ErrMessageEmpty          = errors.New("消息不能为空")
	ErrMessageSelf           = errors.New("不能给自己发私信")
	ErrMessageNotFound       = errors.New("消息不存在")
	ErrNotMessageSender      = errors.New("只能撤回自己发送的消息")
	ErrStorageFull           = errors.New("存储空间不足")
	UnauthorizedError        = errors.New("权限不足")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrLoginIDInvalid:        BadRequest,
	ErrPasswordTooShort:      BadRequest,
	ErrPasswordIncorrect:     Unauthorized,
	ErrUserNotFound:          NotFound,
	ErrUserMuted:             Forbidden,
	ErrUserBan:               Forbidden,
	ErrNoPermissionOverAdmin: Forbidden,
	ErrAdminKeyIncorrect:     Forbidden,
	ErrRoleInvalid:           BadRequest,
	ErrBlockSelf:             BadRequest,
	ErrReportSelf:            BadRequest,
	ErrBlocked:               Forbidden,
	ErrPostNotFound:          NotFound,
	ErrPostTitleInvalid:      BadRequest,
	ErrCategoryInvalid:       BadRequest,
	ErrContentEmpty:          BadRequest,
	ErrSummaryTooLong:        BadRequest,
	ErrStatFieldInvalid:      BadRequest,
	ErrReplyNotFound:         NotFound,
	ErrMessageEmpty:          BadRequest,
	ErrMessageSelf:           BadRequest,
	ErrMessageNotFound:       NotFound,
	ErrNotMessageSender:      Forbidden,
	ErrStorageFull:           PayloadTooLarge,
	UnauthorizedError:        Forbidden,
	UnExpectedError:          InternalServerError,
}
