package model

// Customer is customer model entity
type Customer struct {
	ID        int64  `json:"id" bson:"_id" msgpack:"id"`
	FirstName string `json:"firstName" bson:"firstName" msgpack:"firstName" validate:"required"`
	LastName  string `json:"lastName" bson:"lastName" msgpack:"lastName" validate:"required"`
	Email     string `json:"email" bson:"email" msgpack:"email" validate:"required,email"`
}

// IsNew reports whether customer hasn't been persisted yet
func (c *Customer) IsNew() bool {
	return c.ID == 0
}
