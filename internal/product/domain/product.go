package domain

type Product struct {
	ID          int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string  `json:"name" gorm:"column:name;type:varchar(255)"`
	Description string  `json:"description" gorm:"column:description;type:text"`
	Stock       int64   `json:"stock" gorm:"column:stock;not null;default:0"`
	Price       float64 `json:"price" gorm:"column:price;type:decimal(20,8);not null"`
}

func (Product) TableName() string { return "products" }

// Validate 校验业务不变量，两个前端共用同一份校验
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return NewInvalidArgument("id must be a positive integer")
	}
	if p.Stock < 0 {
		return NewInvalidArgument("stock must not be negative")
	}
	if p.Price < 0 {
		return NewInvalidArgument("price must not be negative")
	}
	return nil
}
