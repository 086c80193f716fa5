package model

import (
	"strconv"
	"time"
)

// Client is an entry in the local client registry.
type Client struct {
	ID          int64     `json:"id,string"`
	CompanyName string    `json:"companyName"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Agents      []string  `json:"agents"`
	Phones      []string  `json:"phones"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c Client) Field(key string) any {
	switch key {
	case "id":
		return strconv.FormatInt(c.ID, 10)
	case "companyName":
		return c.CompanyName
	case "address":
		return c.Address
	case "phone":
		return c.Phone
	case "createdAt":
		return c.CreatedAt
	default:
		return nil
	}
}

func (c Client) FieldKeys() []string {
	return []string{"id", "companyName", "address", "phone", "createdAt"}
}
