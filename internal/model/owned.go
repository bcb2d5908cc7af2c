package model

// Owned is implemented by every tenant-owned row
type Owned interface {
	GetOwnerID() string
	GetCreatorID() string
}

func (c *Category) GetOwnerID() string        { return c.OwnerID }
func (c *Category) GetCreatorID() string      { return c.CreatorID }
func (p *Product) GetOwnerID() string         { return p.OwnerID }
func (p *Product) GetCreatorID() string       { return p.CreatorID }
func (v *Vendor) GetOwnerID() string          { return v.OwnerID }
func (v *Vendor) GetCreatorID() string        { return v.CreatorID }
func (i *Image) GetOwnerID() string           { return i.OwnerID }
func (i *Image) GetCreatorID() string         { return i.CreatorID }
func (o *PurchaseOrder) GetOwnerID() string   { return o.OwnerID }
func (o *PurchaseOrder) GetCreatorID() string { return o.CreatorID }
func (i *PurchaseItem) GetOwnerID() string    { return i.OwnerID }
func (i *PurchaseItem) GetCreatorID() string  { return i.CreatorID }

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Vendor{},
		&Image{},
		&PurchaseOrder{},
		&PurchaseItem{},
	}
}
