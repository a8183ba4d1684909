package models

import (
	"github.com/contactdesk/backend/internal/domain/customer"
)

// CustomerModel is the persistence model for a customer record
type CustomerModel struct {
	ID      string `gorm:"type:varchar(64);primaryKey"`
	Name    string `gorm:"type:varchar(50);not null"`
	Email   string `gorm:"type:varchar(255);not null"`
	Phone   string `gorm:"type:varchar(50);not null"`
	Address string `gorm:"type:varchar(200)"`
	TimestampModel
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a domain customer
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		ID:      customer.ID(m.ID),
		Name:    m.Name,
		Email:   m.Email,
		Phone:   m.Phone,
		Address: customer.Address(m.Address),
	}
}

// CustomerModelFromDomain converts a domain customer
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	return &CustomerModel{
		ID:      c.ID.String(),
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: string(c.Address),
	}
}
