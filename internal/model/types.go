package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DayLayout is the calendar-day key format used by DailyLog.Day.
const DayLayout = "2006-01-02"

// Account is an end user tracking intake against goals.
type Account struct {
	ID           string `gorm:"primaryKey;type:char(36)"`
	Email        string `gorm:"size:320;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Username     string `gorm:"size:120;not null;default:''"`
	GoalCalories string `gorm:"size:32;not null;default:''"`
	GoalProtein  string `gorm:"size:32;not null;default:''"`
	GoalCarbs    string `gorm:"size:32;not null;default:''"`
	GoalFat      string `gorm:"size:32;not null;default:''"`
	MealPlan     string `gorm:"type:text;not null;default:''"`
	CoachNotes   string `gorm:"type:text;not null;default:''"`

	// CoachID and Coach change only through service.Connect and service.Disconnect.
	CoachID *string `gorm:"type:char(36);index"`
	Coach   *Coach

	DailyLogs []DailyLog `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Coach can be linked to many accounts. Clients mirrors accounts.coach_id.
type Coach struct {
	ID           string    `gorm:"primaryKey;type:char(36)"`
	Email        string    `gorm:"size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"size:120;not null;default:''"`
	Bio          string    `gorm:"type:text;not null;default:''"`
	Clients      []Account `gorm:"foreignKey:CoachID;constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Coach) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DailyLog aggregates one calendar day for one account.
// Calories always equals the sum of its entries' calories.
type DailyLog struct {
	ID          string      `gorm:"primaryKey;type:char(36)"`
	AccountID   string      `gorm:"type:char(36);not null;uniqueIndex:idx_daily_logs_account_day"`
	Day         string      `gorm:"type:char(10);not null;uniqueIndex:idx_daily_logs_account_day"`
	Date        time.Time   `gorm:"not null;index"`
	Calories    int         `gorm:"not null;default:0"`
	FoodEntries []FoodEntry `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l *DailyLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// FoodEntry is one logged food item.
type FoodEntry struct {
	ID         string         `gorm:"primaryKey;type:char(36)"`
	DailyLogID string         `gorm:"type:char(36);not null;index"`
	Name       string         `gorm:"size:255;not null"`
	Calories   int            `gorm:"not null"`
	Protein    float64        `gorm:"not null;default:0"`
	Carbs      float64        `gorm:"not null;default:0"`
	Fat        float64        `gorm:"not null;default:0"`
	Date       time.Time      `gorm:"not null"`
	SourceRef  string         `gorm:"size:64;not null;default:''"`
	Serving    string         `gorm:"size:255;not null;default:''"`
	Metadata   datatypes.JSON `gorm:"type:text"`
	CreatedAt  time.Time
}

func (e *FoodEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// SearchCacheEntry stores one ranked lookup result list.
type SearchCacheEntry struct {
	ID        uint           `gorm:"primaryKey"`
	Provider  string         `gorm:"size:32;not null;uniqueIndex:idx_lookup_cache_key"`
	Query     string         `gorm:"size:255;not null"`
	QueryNorm string         `gorm:"size:255;not null;uniqueIndex:idx_lookup_cache_key"`
	Payload   datatypes.JSON `gorm:"type:text;not null"`
	FetchedAt time.Time      `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"not null;index"`
}

func (SearchCacheEntry) TableName() string {
	return "lookup_cache"
}

// All lists every model for AutoMigrate in dependency order.
func All() []any {
	return []any{&Coach{}, &Account{}, &DailyLog{}, &FoodEntry{}, &SearchCacheEntry{}}
}
