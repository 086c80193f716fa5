package dto

import (
	"time"

	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/service"
)

type CreateClientRequest struct {
	CompanyName string   `json:"companyName" binding:"required,max=255"`
	Address     string   `json:"address" binding:"max=255"`
	Phone       string   `json:"phone" binding:"max=32"`
	Agents      []string `json:"agents" binding:"max=50,dive,max=255"`
	Phones      []string `json:"phones" binding:"max=20,dive,max=32"`
}

func (r CreateClientRequest) ToInput() service.CreateClientInput {
	return service.CreateClientInput{
		CompanyName: r.CompanyName,
		Address:     r.Address,
		Phone:       r.Phone,
		Agents:      r.Agents,
		Phones:      r.Phones,
	}
}

type ClientResponse struct {
	ID          int64     `json:"id,string"`
	CompanyName string    `json:"companyName"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Agents      []string  `json:"agents"`
	Phones      []string  `json:"phones"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		Address:     c.Address,
		Phone:       c.Phone,
		Agents:      c.Agents,
		Phones:      c.Phones,
		CreatedAt:   c.CreatedAt,
	}
}
