package queue

import (
	"encoding/json"

	"github.com/megano/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderHoldExpire 待支付订单库存占用到期
	TaskOrderHoldExpire = constants.TaskOrderHoldExpire
	// TaskDiscountExpire 周期性停用过期折扣
	TaskDiscountExpire = constants.TaskDiscountExpire
)

// OrderHoldExpirePayload 库存占用到期任务载荷
type OrderHoldExpirePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderHoldExpireTask 创建库存占用到期任务
func NewOrderHoldExpireTask(payload OrderHoldExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderHoldExpire, body), nil
}

// ParseOrderHoldExpirePayload 解析任务载荷
func ParseOrderHoldExpirePayload(task *asynq.Task) (OrderHoldExpirePayload, error) {
	var payload OrderHoldExpirePayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// NewDiscountExpireTask 创建折扣过期扫描任务
func NewDiscountExpireTask() *asynq.Task {
	return asynq.NewTask(TaskDiscountExpire, nil)
}
