package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JacobDiB/NutriLink/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordCost is the bcrypt cost used for new credentials.
var PasswordCost = bcrypt.DefaultCost

type Role string

const (
	RoleAccount Role = "account"
	RoleCoach   Role = "coach"
)

// Principal is the result of a successful login. Exactly one of Account or
// Coach is set, matching Role.
type Principal struct {
	Role    Role
	Account *model.Account
	Coach   *model.Coach
}

type Goals struct {
	Calories string
	Protein  string
	Carbs    string
	Fat      string
}

type AccountInput struct {
	Email    string
	Password string
	Username string
	Goals    Goals
}

type CoachInput struct {
	Email    string
	Password string
	Name     string
	Bio      string
}

// ClientPlan holds the fields a coach may change on a client. Nil fields are left alone.
type ClientPlan struct {
	Goals      *Goals
	MealPlan   *string
	CoachNotes *string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func CreateAccount(db *gorm.DB, in AccountInput) (model.Account, error) {
	email, hash, err := prepareCredentials(in.Email, in.Password)
	if err != nil {
		return model.Account{}, err
	}
	goals, err := normalizeGoals(in.Goals)
	if err != nil {
		return model.Account{}, err
	}
	acct := model.Account{
		Email:        email,
		PasswordHash: hash,
		Username:     strings.TrimSpace(in.Username),
		GoalCalories: goals.Calories,
		GoalProtein:  goals.Protein,
		GoalCarbs:    goals.Carbs,
		GoalFat:      goals.Fat,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email); err != nil {
			return err
		}
		if err := tx.Create(&acct).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s: %w", email, ErrEmailTaken)
			}
			return fmt.Errorf("insert account: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	return acct, nil
}

func CreateCoach(db *gorm.DB, in CoachInput) (model.Coach, error) {
	email, hash, err := prepareCredentials(in.Email, in.Password)
	if err != nil {
		return model.Coach{}, err
	}
	coach := model.Coach{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Bio:          strings.TrimSpace(in.Bio),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email); err != nil {
			return err
		}
		if err := tx.Create(&coach).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s: %w", email, ErrEmailTaken)
			}
			return fmt.Errorf("insert coach: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Coach{}, err
	}
	return coach, nil
}

// FindByCredentials resolves a login. Accounts are tried before coaches and
// the role comes from whichever table matched.
func FindByCredentials(db *gorm.DB, email, password string) (Principal, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return Principal{}, fmt.Errorf("email is required")
	}

	var acct model.Account
	err := db.Where("email = ?", email).First(&acct).Error
	switch {
	case err == nil:
		if passwordMatches(acct.PasswordHash, password) {
			full, err := GetAccount(db, acct.ID)
			if err != nil {
				return Principal{}, err
			}
			return Principal{Role: RoleAccount, Account: &full}, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Principal{}, fmt.Errorf("lookup account credentials: %w", err)
	}

	var coach model.Coach
	err = db.Where("email = ?", email).First(&coach).Error
	switch {
	case err == nil:
		if passwordMatches(coach.PasswordHash, password) {
			full, err := GetCoach(db, coach.ID)
			if err != nil {
				return Principal{}, err
			}
			return Principal{Role: RoleCoach, Coach: &full}, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Principal{}, fmt.Errorf("lookup coach credentials: %w", err)
	}

	return Principal{}, fmt.Errorf("credentials for %s: %w", email, ErrNotFound)
}

// GetAccount loads an account with its coach and its full log history.
func GetAccount(db *gorm.DB, id string) (model.Account, error) {
	var acct model.Account
	err := preloadLogs(db, "DailyLogs").
		Preload("Coach").
		Where("id = ?", id).
		First(&acct).Error
	if err != nil {
		return model.Account{}, notFound(fmt.Sprintf("account %s", id), err)
	}
	return acct, nil
}

func GetAccountByEmail(db *gorm.DB, email string) (model.Account, error) {
	email = NormalizeEmail(email)
	var acct model.Account
	if err := db.Select("id").Where("email = ?", email).First(&acct).Error; err != nil {
		return model.Account{}, notFound(fmt.Sprintf("account %s", email), err)
	}
	return GetAccount(db, acct.ID)
}

// GetCoach loads a coach with every client and the clients' logs.
func GetCoach(db *gorm.DB, id string) (model.Coach, error) {
	var coach model.Coach
	err := preloadLogs(db, "Clients.DailyLogs").
		Preload("Clients", func(db *gorm.DB) *gorm.DB {
			return db.Order("email ASC")
		}).
		Where("id = ?", id).
		First(&coach).Error
	if err != nil {
		return model.Coach{}, notFound(fmt.Sprintf("coach %s", id), err)
	}
	return coach, nil
}

func GetCoachByEmail(db *gorm.DB, email string) (model.Coach, error) {
	email = NormalizeEmail(email)
	var coach model.Coach
	if err := db.Select("id").Where("email = ?", email).First(&coach).Error; err != nil {
		return model.Coach{}, notFound(fmt.Sprintf("coach %s", email), err)
	}
	return GetCoach(db, coach.ID)
}

func ListCoaches(db *gorm.DB) ([]model.Coach, error) {
	var coaches []model.Coach
	if err := db.Order("name ASC, email ASC").Find(&coaches).Error; err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	return coaches, nil
}

// UpdateGoals replaces the account's own goal fields.
func UpdateGoals(db *gorm.DB, accountID string, goals Goals) error {
	goals, err := normalizeGoals(goals)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Account{}).Where("id = ?", accountID).Updates(goalColumns(goals))
		if res.Error != nil {
			return fmt.Errorf("update goals: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
		}
		return nil
	})
}

// UpdateClientPlan lets a coach edit goals, meal plan and notes of one of
// their own clients.
func UpdateClientPlan(db *gorm.DB, coachID, accountID string, plan ClientPlan) error {
	updates := map[string]any{}
	if plan.Goals != nil {
		goals, err := normalizeGoals(*plan.Goals)
		if err != nil {
			return err
		}
		for k, v := range goalColumns(goals) {
			updates[k] = v
		}
	}
	if plan.MealPlan != nil {
		updates["meal_plan"] = strings.TrimSpace(*plan.MealPlan)
	}
	if plan.CoachNotes != nil {
		updates["coach_notes"] = strings.TrimSpace(*plan.CoachNotes)
	}
	if len(updates) == 0 {
		return fmt.Errorf("nothing to update")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var acct model.Account
		if err := tx.Select("id", "coach_id").Where("id = ?", accountID).First(&acct).Error; err != nil {
			return notFound(fmt.Sprintf("account %s", accountID), err)
		}
		if acct.CoachID == nil || *acct.CoachID != coachID {
			return ErrNotClient
		}
		if err := tx.Model(&model.Account{}).Where("id = ?", accountID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update client plan: %w", err)
		}
		return nil
	})
}

func prepareCredentials(email, password string) (string, string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") {
		return "", "", fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return email, string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ensureEmailFree rejects an email already used by either an account or a coach.
func ensureEmailFree(tx *gorm.DB, email string) error {
	var n int64
	if err := tx.Model(&model.Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return fmt.Errorf("check account email: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", email, ErrEmailTaken)
	}
	if err := tx.Model(&model.Coach{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return fmt.Errorf("check coach email: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", email, ErrEmailTaken)
	}
	return nil
}

func normalizeGoals(g Goals) (Goals, error) {
	out := Goals{
		Calories: strings.TrimSpace(g.Calories),
		Protein:  strings.TrimSpace(g.Protein),
		Carbs:    strings.TrimSpace(g.Carbs),
		Fat:      strings.TrimSpace(g.Fat),
	}
	for name, v := range map[string]string{"calorie": out.Calories, "protein": out.Protein, "carbs": out.Carbs, "fat": out.Fat} {
		if v == "" {
			continue
		}
		if n, ok := parseGoal(v); !ok || n < 0 {
			return Goals{}, fmt.Errorf("%s goal must be a non-negative number, got %q", name, v)
		}
	}
	return out, nil
}

func goalColumns(g Goals) map[string]any {
	return map[string]any{
		"goal_calories": g.Calories,
		"goal_protein":  g.Protein,
		"goal_carbs":    g.Carbs,
		"goal_fat":      g.Fat,
	}
}

// preloadLogs orders an association path of logs by day and their entries by time.
func preloadLogs(db *gorm.DB, path string) *gorm.DB {
	return db.
		Preload(path, func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, created_at ASC")
		}).
		Preload(path+".FoodEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, created_at ASC")
		})
}
