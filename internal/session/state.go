package session

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrentVersion 会话数据结构版本，变更字段时递增
const CurrentVersion = 1

// CartLine 购物车行：数量与加入时的单价快照
type CartLine struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// State 单个会话的类型化状态
// Cart 为 nil 表示会话中没有购物车；Order 为 nil 表示没有待处理订单
type State struct {
	Version int                 `json:"v"`
	Cart    map[string]CartLine `json:"cart"`
	Order   *uint               `json:"order,omitempty"`

	id       string
	modified bool
}

// New 创建空会话
func New(id string) *State {
	return &State{Version: CurrentVersion, id: id}
}

// ID 会话ID
func (s *State) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Modified 是否需要回写存储
func (s *State) Modified() bool {
	return s != nil && s.modified
}

// MarkModified 标记会话已修改
func (s *State) MarkModified() {
	if s != nil {
		s.modified = true
	}
}

func (s *State) markSaved() {
	s.modified = false
}

// HasCart 会话中是否存在购物车（可能为空）
func (s *State) HasCart() bool {
	return s != nil && s.Cart != nil
}

// CartNonEmpty 购物车是否至少有一行
func (s *State) CartNonEmpty() bool {
	return s.HasCart() && len(s.Cart) > 0
}

// EnsureCart 返回购物车容器，不存在时创建
func (s *State) EnsureCart() map[string]CartLine {
	if s.Cart == nil {
		s.Cart = make(map[string]CartLine)
		s.modified = true
	}
	return s.Cart
}

// ClearCart 从会话中整体移除购物车
func (s *State) ClearCart() {
	if s == nil || s.Cart == nil {
		return
	}
	s.Cart = nil
	s.modified = true
}

// CartKeys 按数字顺序返回购物车中的商品ID
func (s *State) CartKeys() []string {
	if !s.HasCart() {
		return nil
	}
	keys := make([]string, 0, len(s.Cart))
	for key := range s.Cart {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseUint(keys[i], 10, 64)
		b, _ := strconv.ParseUint(keys[j], 10, 64)
		return a < b
	})
	return keys
}

// OrderID 当前待处理订单
func (s *State) OrderID() (uint, bool) {
	if s == nil || s.Order == nil || *s.Order == 0 {
		return 0, false
	}
	return *s.Order, true
}

// SetOrder 记录订单ID
func (s *State) SetOrder(orderID uint) {
	if current, ok := s.OrderID(); ok && current == orderID {
		return
	}
	id := orderID
	s.Order = &id
	s.modified = true
}

// ClearOrder 移除订单ID，不影响订单本身的支付状态
func (s *State) ClearOrder() {
	if s == nil || s.Order == nil {
		return
	}
	s.Order = nil
	s.modified = true
}

// Encode 序列化会话
func Encode(s *State) ([]byte, error) {
	s.Version = CurrentVersion
	return json.Marshal(s)
}

// Decode 反序列化并校验会话
// 未知版本丢弃全部数据；非法的购物车行被剔除，并标记为已修改以便回写
func Decode(id string, raw []byte) *State {
	fresh := New(id)
	if len(raw) == 0 {
		return fresh
	}
	var decoded State
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Version != CurrentVersion {
		fresh.modified = true
		return fresh
	}
	decoded.id = id
	if decoded.Order != nil && *decoded.Order == 0 {
		decoded.Order = nil
		decoded.modified = true
	}
	for key, line := range decoded.Cart {
		if !validLine(key, line) {
			delete(decoded.Cart, key)
			decoded.modified = true
		}
	}
	return &decoded
}

func validLine(key string, line CartLine) bool {
	id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
	if err != nil || id == 0 {
		return false
	}
	if line.Quantity < 1 {
		return false
	}
	if _, err := decimal.NewFromString(line.Price); err != nil {
		return false
	}
	return true
}
