package service

import (
	"iter"
	"strconv"

	"github.com/megano/internal/models"
	"github.com/megano/internal/session"
)

// CartLineDetail 结合实时目录信息的购物车行
type CartLineDetail struct {
	ItemID    uint         `json:"item_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"price_snapshot"`
	LineTotal models.Money `json:"line_total"`
	Name      string       `json:"name"`
	Image     string       `json:"image"`
	ShopID    uint         `json:"shop_id"`
	ShopName  string       `json:"shop_name"`
	Available bool         `json:"available"`
}

// CartService 购物车服务
type CartService struct {
	catalog CatalogLookup
}

// NewCartService 创建购物车服务
func NewCartService(catalog CatalogLookup) *CartService {
	return &CartService{catalog: catalog}
}

// For 绑定到当前请求的会话
func (s *CartService) For(state *session.State) *Cart {
	return &Cart{state: state, catalog: s.catalog}
}

// AddItem 校验商品上架后加入购物车
func (s *CartService) AddItem(state *session.State, itemID uint, quantity int, replace bool) (*Cart, error) {
	items, err := s.catalog.LookupActiveItems([]uint{itemID})
	if err != nil {
		return nil, err
	}
	item, ok := items[itemID]
	if !ok {
		return nil, ErrCatalogItemNotFound
	}
	cart := s.For(state)
	cart.Add(itemID, item.Price, quantity, replace)
	return cart, nil
}

// Cart 会话中的购物车，所有修改都会标记会话待回写
type Cart struct {
	state   *session.State
	catalog CatalogLookup
}

func cartKey(itemID uint) string {
	return strconv.FormatUint(uint64(itemID), 10)
}

// Add 首次加入时以数量 0 和当前单价建行；replace 为 true 时直接设置数量，否则累加
func (c *Cart) Add(itemID uint, price models.Money, quantity int, replace bool) {
	if !replace && quantity < 1 {
		quantity = 1
	}
	lines := c.state.EnsureCart()
	key := cartKey(itemID)
	line, ok := lines[key]
	if !ok {
		line = session.CartLine{Quantity: 0, Price: price.String()}
	}
	if replace {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	if line.Quantity < 1 {
		c.Remove(itemID)
		return
	}
	lines[key] = line
	c.state.MarkModified()
}

// Decrement 数量减一，减到 0 时移除该行
func (c *Cart) Decrement(itemID uint) {
	if !c.state.HasCart() {
		return
	}
	key := cartKey(itemID)
	line, ok := c.state.Cart[key]
	if !ok {
		return
	}
	line.Quantity--
	if line.Quantity < 1 {
		c.Remove(itemID)
		return
	}
	c.state.Cart[key] = line
	c.state.MarkModified()
}

// Remove 删除该行，不存在时无操作
func (c *Cart) Remove(itemID uint) {
	if !c.state.HasCart() {
		return
	}
	key := cartKey(itemID)
	if _, ok := c.state.Cart[key]; !ok {
		return
	}
	delete(c.state.Cart, key)
	c.state.MarkModified()
}

// Clear 从会话中移除购物车
func (c *Cart) Clear() {
	c.state.ClearCart()
}

// Quantity 某商品当前数量
func (c *Cart) Quantity(itemID uint) int {
	if !c.state.HasCart() {
		return 0
	}
	return c.state.Cart[cartKey(itemID)].Quantity
}

// IsEmpty 是否没有任何行
func (c *Cart) IsEmpty() bool {
	return !c.state.CartNonEmpty()
}

// TotalCount 全部数量之和
func (c *Cart) TotalCount() int {
	total := 0
	for _, line := range c.state.Cart {
		total += line.Quantity
	}
	return total
}

// TotalPrice 按加入时单价计算的总价
func (c *Cart) TotalPrice() models.Money {
	total := models.Money{}
	for _, key := range c.state.CartKeys() {
		line := c.state.Cart[key]
		total = total.Plus(snapshotPrice(line).Times(line.Quantity))
	}
	return total
}

// Lines 按商品ID顺序遍历购物车，每次遍历都重新查询目录
func (c *Cart) Lines() iter.Seq2[CartLineDetail, error] {
	return func(yield func(CartLineDetail, error) bool) {
		keys := c.state.CartKeys()
		if len(keys) == 0 {
			return
		}
		ids := make([]uint, 0, len(keys))
		for _, key := range keys {
			ids = append(ids, parseCartKey(key))
		}
		items, err := c.catalog.LookupActiveItems(ids)
		if err != nil {
			yield(CartLineDetail{}, err)
			return
		}
		for i, key := range keys {
			line := c.state.Cart[key]
			price := snapshotPrice(line)
			detail := CartLineDetail{
				ItemID:    ids[i],
				Quantity:  line.Quantity,
				UnitPrice: price,
				LineTotal: price.Times(line.Quantity),
			}
			if item, ok := items[ids[i]]; ok {
				detail.Name = item.Name
				detail.Image = item.Image
				detail.ShopID = item.ShopID
				detail.ShopName = item.ShopName
				detail.Available = true
			}
			if !yield(detail, nil) {
				return
			}
		}
	}
}

// Details 收集全部行
func (c *Cart) Details() ([]CartLineDetail, error) {
	details := make([]CartLineDetail, 0, len(c.state.Cart))
	for detail, err := range c.Lines() {
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func parseCartKey(key string) uint {
	id, _ := strconv.ParseUint(key, 10, 64)
	return uint(id)
}

func snapshotPrice(line session.CartLine) models.Money {
	price, err := models.ParseMoney(line.Price)
	if err != nil {
		return models.Money{}
	}
	return price
}
