package constants

// 配送方式代号
const (
	DeliveryCodenameRegular = "regular-delivery"
	DeliveryCodenameExpress = "express-delivery"
)

// 支付方式代号
const (
	PaymentCodenameBankCard = "bank-card"
	PaymentCodenameCash     = "cash-on-delivery"
)

// 结账流程的下一步
const (
	NextStepPayment         = "payment"
	NextStepHome            = "home"
	NextStepPaymentProgress = "payment_progress"
)

// 订单状态机阶段
const (
	StageNoCart       = "NO_CART"
	StageCartActive   = "CART_ACTIVE"
	StageOrderPending = "ORDER_PENDING"
	StageOrderPaid    = "ORDER_PAID"
)

// 支付结果
const (
	PaymentOutcomePassed   = "passed"
	PaymentOutcomeDeclined = "declined"
	PaymentOutcomeSettled  = "already_settled"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 缓存键
const (
	CacheKeyCategories     = "categories"
	CacheKeyProductsPrefix = "products_"
)

// gin 上下文键
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	ContextKeySession   = "session_state"
)

// 队列与任务名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskOrderHoldExpire = "order:hold_expire"
	TaskDiscountExpire  = "discount:expire"
)
