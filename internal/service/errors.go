package service

import "errors"

// ==================== 领域错误 ====================

// 控制器按 errors.Is 映射为 HTTP 状态码：
// NotFound 类 → 404，BadRequest 类 → 400，其余 → 500
var (
	// 认证
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("账号已禁用")
	ErrUsernameTaken      = errors.New("用户名已被占用")

	// 店铺
	ErrSubdomainTaken = errors.New("子域名已被占用")

	// 属性目录
	ErrSlugTaken        = errors.New("属性标识已存在")
	ErrAttributeInUse   = errors.New("属性仍被商品引用")
	ErrInvalidValueType = errors.New("色板值仅对 color 类型属性有效")

	// 变体生成
	ErrNoAttributesConfigured = errors.New("Product has no attributes configured")
	ErrNoValidAttributes      = errors.New("所选属性没有可用的有效值")
	ErrBulkInputMissing       = errors.New("Either regenerate or variants must be provided")
	ErrVariantNotFound        = errors.New("变体不存在")
)
