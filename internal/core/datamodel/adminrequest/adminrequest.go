package adminrequest

import "time"

type AdminRequest struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;not null;index"`
	Name         string     `gorm:"column:name;not null"`
	Reason       *string    `gorm:"column:reason"`
	Status       string     `gorm:"column:status;not null;default:pending"`
	RequestedAt  time.Time  `gorm:"column:requested_at;autoCreateTime"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy   *int64     `gorm:"column:reviewed_by"`
	ReviewerName *string    `gorm:"->;-:migration;column:reviewer_name"`
}

func (AdminRequest) TableName() string {
	return "admin_requests"
}
