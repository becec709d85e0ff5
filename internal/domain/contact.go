package domain

import "time"

type ContactMessage struct {
	ID        string    `gorm:"primaryKey;size:24" json:"_id" bson:"_id"`
	Name      string    `gorm:"size:200" json:"name" bson:"name"`
	Email     string    `gorm:"size:320" json:"email" bson:"email"`
	Message   string    `gorm:"type:text" json:"message" bson:"message"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
}

// TableName Specify table name
func (ContactMessage) TableName() string {
	return "plantee_contact"
}
