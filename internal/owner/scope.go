// Package owner restricts queries to rows belonging to a single user.
package owner

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForOwner returns a GORM scope that filters the current table by user_id.
// A nil user id matches nothing rather than everything.
func ForOwner(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "user_id"},
			Value:  userID,
		})
	}
}

// Guard hands out query builders that already carry the owner filter, so a
// repository cannot forget it.
type Guard struct {
	db     *gorm.DB
	userID uuid.UUID
}

func NewGuard(db *gorm.DB, userID uuid.UUID) Guard {
	return Guard{db: db, userID: userID}
}

// DB returns a session scoped to the guarded owner.
func (g Guard) DB() *gorm.DB {
	return g.db.Scopes(ForOwner(g.userID))
}

func (g Guard) UserID() uuid.UUID {
	return g.userID
}
