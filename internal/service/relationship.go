package service

import (
	"fmt"

	"github.com/JacobDiB/NutriLink/internal/model"
	"gorm.io/gorm"
)

// Connect links acct to coach. The row is written first; the in-memory sides
// are updated together only after the commit succeeds. Calling it again for
// the same pair changes nothing.
func Connect(db *gorm.DB, acct *model.Account, coach *model.Coach) error {
	if acct == nil || coach == nil {
		return fmt.Errorf("account and coach are required")
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Coach{}).Where("id = ?", coach.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check coach: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("coach %s: %w", coach.ID, ErrNotFound)
		}
		res := tx.Model(&model.Account{}).Where("id = ?", acct.ID).Update("coach_id", coach.ID)
		if res.Error != nil {
			return fmt.Errorf("link account to coach: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("account %s: %w", acct.ID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// A previous coach loaded alongside must not keep the account.
	if acct.Coach != nil && acct.Coach.ID != coach.ID {
		removeClient(acct.Coach, acct.Email)
	}
	id := coach.ID
	acct.CoachID = &id
	acct.Coach = coach
	if !hasClient(coach, acct.Email) {
		coach.Clients = append(coach.Clients, *acct)
	}
	return nil
}

// Disconnect unlinks acct from its coach. It is a no-op when no coach is set.
// The coach side is matched by email since both sides may be separate copies.
func Disconnect(db *gorm.DB, acct *model.Account) error {
	if acct == nil {
		return fmt.Errorf("account is required")
	}
	if acct.CoachID == nil && acct.Coach == nil {
		return nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Account{}).Where("id = ?", acct.ID).Update("coach_id", nil)
		if res.Error != nil {
			return fmt.Errorf("unlink account from coach: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("account %s: %w", acct.ID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if acct.Coach != nil {
		removeClient(acct.Coach, acct.Email)
	}
	acct.CoachID = nil
	acct.Coach = nil
	return nil
}

func hasClient(coach *model.Coach, email string) bool {
	email = NormalizeEmail(email)
	for _, c := range coach.Clients {
		if NormalizeEmail(c.Email) == email {
			return true
		}
	}
	return false
}

func removeClient(coach *model.Coach, email string) {
	email = NormalizeEmail(email)
	kept := coach.Clients[:0]
	for _, c := range coach.Clients {
		if NormalizeEmail(c.Email) != email {
			kept = append(kept, c)
		}
	}
	coach.Clients = kept
}
