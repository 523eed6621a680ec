package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Customer struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Phone     string            `gorm:"type:text;not null;index" json:"phone"`
	Email     string            `gorm:"type:text" json:"email,omitempty"`
	Address   string            `gorm:"type:text" json:"address,omitempty"`
	Carrier   string            `gorm:"type:text" json:"carrier,omitempty"`
	JoinDate  time.Time         `gorm:"not null" json:"join_date"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// CustomerNumber is a secondary line owned by a customer, typically a family member.
type CustomerNumber struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Phone      string       `gorm:"type:text;not null" json:"phone"`
	Carrier    string       `gorm:"type:text" json:"carrier,omitempty"`
	Label      string       `gorm:"type:text" json:"label,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CustomerNumber) TableName() string { return "customer_numbers" }

// UnknownName is shown wherever a referenced customer no longer resolves.
const UnknownName = "Unknown customer"

// Directory indexes customers by id for join lookups over an in-memory snapshot.
type Directory map[snowflake.ID]Customer

func NewDirectory(customers []Customer) Directory {
	dir := make(Directory, len(customers))
	for _, c := range customers {
		dir[c.ID] = c
	}
	return dir
}

// NameOf returns the customer's name, or UnknownName when the id does not resolve.
func (d Directory) NameOf(id snowflake.ID) string {
	if c, ok := d[id]; ok && c.Name != "" {
		return c.Name
	}
	return UnknownName
}
