package schema

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100;not null"`
	Email     string `gorm:"unique;size:254;not null"`
	Password  []byte

	Role   string `gorm:"size:50;not null"`
	Status string `gorm:"size:50;not null;default:'pending'"`

	Phone string `gorm:"size:50"`
	Photo string

	CreatedAt time.Time

	Shifts    []Shift
	Schedules []Schedule
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Institution struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name    string `gorm:"size:200;not null"`
	Address string `gorm:"size:500"`
	Phone   string `gorm:"size:50"`
	Email   string `gorm:"size:254"`

	CreatedAt time.Time
}

type Schedule struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	InstitutionId uuid.UUID `gorm:"type:uuid;not null"`

	Date      string `gorm:"size:10;not null;index"`
	StartTime string `gorm:"size:5;not null"`
	EndTime   string `gorm:"size:5;not null"`

	Status string `gorm:"size:50;not null;default:'available'"`

	CreatedAt time.Time

	User        *User        `gorm:"constraint:OnDelete:CASCADE"`
	Institution *Institution `gorm:"constraint:OnDelete:CASCADE"`
}

type Shift struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	InstitutionId uuid.UUID `gorm:"type:uuid;not null"`

	Date       string  `gorm:"size:10;not null;index"`
	Hours      float64 `gorm:"not null"`
	HourlyRate float64 `gorm:"not null"`
	TravelCost float64 `gorm:"not null"`

	// Computed once at creation, never re-derived.
	Total float64 `gorm:"not null"`

	Status string `gorm:"size:50;not null;default:'pending'"`

	CreatedAt time.Time

	User        *User        `gorm:"constraint:OnDelete:CASCADE"`
	Institution *Institution `gorm:"constraint:OnDelete:CASCADE"`
}

type Exchange struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	ShiftId    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromUserId uuid.UUID `gorm:"type:uuid;not null;index"`
	ToUserId   uuid.UUID `gorm:"type:uuid;not null;index"`

	Status string `gorm:"size:50;not null;default:'pending'"`

	CreatedAt time.Time

	Shift    *Shift `gorm:"constraint:OnDelete:CASCADE"`
	FromUser *User  `gorm:"foreignKey:FromUserId"`
	ToUser   *User  `gorm:"foreignKey:ToUserId"`
}

type Payslip struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserId uuid.UUID `gorm:"type:uuid;not null;index"`
	Period string    `gorm:"size:7;not null"`

	GrossTotal float64 `gorm:"not null"`
	Commission float64 `gorm:"not null"`
	NetTotal   float64 `gorm:"not null"`

	CreatedAt time.Time

	Shifts []PayslipShift `gorm:"constraint:OnDelete:CASCADE"`
	User   *User
}

func (p *Payslip) ShiftIds() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Shifts))
	for _, s := range p.Shifts {
		ids = append(ids, s.ShiftId)
	}
	return ids
}

type PayslipShift struct {
	PayslipId uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShiftId   uuid.UUID `gorm:"type:uuid;primaryKey"`

	Payslip *Payslip `gorm:"foreignKey:PayslipId"`
	Shift   *Shift   `gorm:"foreignKey:ShiftId"`
}

type Message struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	SenderId    uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientId uuid.UUID `gorm:"type:uuid;not null;index"`

	Content   string `gorm:"not null"`
	Timestamp time.Time
	Read      bool `gorm:"not null;default:false"`

	Sender    *User `gorm:"foreignKey:SenderId"`
	Recipient *User `gorm:"foreignKey:RecipientId"`
}

type Notification struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserId uuid.UUID `gorm:"type:uuid;not null;index"`

	Type      string `gorm:"size:50;not null"`
	Content   string `gorm:"not null"`
	Timestamp time.Time
	Read      bool `gorm:"not null;default:false"`

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}

// Tables returns every model in migration order.
func Tables() []interface{} {
	return []interface{}{
		&User{}, &Institution{}, &Schedule{}, &Shift{}, &Exchange{},
		&Payslip{}, &PayslipShift{}, &Message{}, &Notification{},
	}
}
