package middleware

import (
	"context"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ==================== 操作人上下文 ====================

type actorKey struct{}

// Actor 当前写操作的操作人，随 request context 传进 GORM 回调
type Actor struct {
	UserID   int64
	Username string
	// 请求携带的店铺范围，0 表示与店铺无关 (如管理端、账户操作)
	StoreID int64
}

// WithActor 把操作人写入 context
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom 从 context 取操作人，定时任务等无人值守的写入返回 nil
func ActorFrom(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	actor, _ := ctx.Value(actorKey{}).(*Actor)
	return actor
}

// ==================== Gin 中间件 ====================

// AuditContext 写操作审计中间件
// 把登录身份和请求的 store_id 范围挂到 request context，
// 落库时由 GORM 回调自动填充 created_by/updated_by
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.Next()
			return
		}

		actor := &Actor{UserID: userID, Username: GetUsername(c)}
		if raw := c.Query("store_id"); raw != "" {
			actor.StoreID, _ = strconv.ParseInt(raw, 10, 64)
		}

		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// ==================== GORM 回调 ====================

// RegisterAuditCallbacks 注册审计回调
// 嵌入 AuditMixin 的模型在 Create/Update 时自动落 created_by/updated_by；
// 没有操作人 (定时任务、游客) 时保持零值
func RegisterAuditCallbacks(db *gorm.DB) {
	_ = db.Callback().Create().Before("gorm:create").Register("shopfarm:audit_create", func(tx *gorm.DB) {
		actor := ActorFrom(tx.Statement.Context)
		if actor == nil {
			return
		}
		stampField(tx, "CreatedBy", actor.UserID)
		stampField(tx, "UpdatedBy", actor.UserID)
	})

	_ = db.Callback().Update().Before("gorm:update").Register("shopfarm:audit_update", func(tx *gorm.DB) {
		actor := ActorFrom(tx.Statement.Context)
		if actor == nil || tx.Statement.Schema == nil {
			return
		}
		// SetColumn 对 struct 更新和 map 更新都生效
		if tx.Statement.Schema.LookUpField("UpdatedBy") != nil {
			tx.Statement.SetColumn("updated_by", actor.UserID, true)
		}
	})
}

// stampField 给模型的审计字段落值，字段已有值或模型没有该字段时不动
func stampField(tx *gorm.DB, name string, userID int64) {
	if tx.Statement.Schema == nil {
		return
	}
	field := tx.Statement.Schema.LookUpField(name)
	if field == nil {
		return
	}

	stamp := func(rv reflect.Value) {
		if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
			_ = field.Set(tx.Statement.Context, rv, userID)
		}
	}

	switch tx.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		stamp(tx.Statement.ReflectValue)
	case reflect.Slice, reflect.Array:
		for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
			stamp(tx.Statement.ReflectValue.Index(i))
		}
	}
}
