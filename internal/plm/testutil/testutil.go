// Package testutil provides an in-memory database and fixture helpers for
// service and handler tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
)

// SetupTestDB opens an isolated in-memory database with the full schema.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey,
// same as the postgres driver in production.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", NewID())), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.Organization{},
		&entity.User{},
		&entity.UserMeta{},
		&entity.PartClass{},
		&entity.Part{},
		&entity.PartRevision{},
		&entity.Assembly{},
		&entity.Subpart{},
		&entity.AssemblySubpart{},
		&entity.Manufacturer{},
		&entity.ManufacturerPart{},
		&entity.Seller{},
		&entity.SellerPart{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// NewID mirrors the production id scheme: a uuid without dashes.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// SeedUser inserts a user.
func SeedUser(t *testing.T, db *gorm.DB, name string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:       NewID(),
		Username: strings.ToLower(strings.ReplaceAll(name, " ", ".")),
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedOrg inserts an organization with the default semi-intelligent scheme
// and an owning user.
func SeedOrg(t *testing.T, db *gorm.DB, name string) *entity.Organization {
	t.Helper()
	owner := SeedUser(t, db, name+" Owner")
	org := &entity.Organization{
		ID:                 NewID(),
		Name:               name,
		NumberScheme:       entity.NumberSchemeSemiIntelligent,
		NumberItemLen:      4,
		NumberVariationLen: 2,
		OwnerID:            owner.ID,
		Currency:           "USD",
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}
	return org
}

// SeedClass inserts a part class with a zero-padded code.
func SeedClass(t *testing.T, db *gorm.DB, orgID, code, name string) *entity.PartClass {
	t.Helper()
	class := &entity.PartClass{
		ID:             NewID(),
		OrganizationID: orgID,
		Code:           code,
		Name:           name,
	}
	if err := db.Create(class).Error; err != nil {
		t.Fatalf("Failed to seed part class: %v", err)
	}
	return class
}
